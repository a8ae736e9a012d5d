package selector

import (
	"context"
	"time"

	"github.com/archsyscall/klogstream/internal/apierrors"
	"github.com/archsyscall/klogstream/internal/model"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
)

// EventKind describes whether a TargetEvent adds or removes a target
// from the pipeline's current working set.
type EventKind int

const (
	TargetAdded EventKind = iota
	TargetRemoved
)

// TargetEvent is emitted by Watch whenever the resolved target set
// changes: a new matching container appears, or a matched pod goes
// away (deleted, or terminated into Succeeded/Failed).
type TargetEvent struct {
	Kind   EventKind
	Target model.Target
}

// Watch lists pods matching sel in every configured namespace, emits an
// Added TargetEvent for each matching container, then keeps watching for
// further changes until ctx is canceled. Errors are pushed onto errCh.
// A failed initial List, permanent or transient, ends the watch for
// that namespace; a failed Watch call retries with backoff unless the
// error is permanent.
func Watch(ctx context.Context, clientset kubernetes.Interface, sel *Selector, clusterContext string, events chan<- TargetEvent, errCh chan<- error) {
	for _, ns := range sel.Namespaces {
		go watchNamespace(ctx, clientset, sel, clusterContext, ns, events, errCh)
	}
}

func watchNamespace(ctx context.Context, clientset kubernetes.Interface, sel *Selector, clusterContext, namespace string, events chan<- TargetEvent, errCh chan<- error) {
	labelSelector := sel.LabelSelectorString()

	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		sendErr(ctx, errCh, apierrors.New(err, apierrors.KindSourceRead, apierrors.IsPermanent(err), "failed to list pods"))
		return
	}

	matched := map[string]*corev1.Pod{}
	var matchedNames []string
	for i := range pods.Items {
		pod := &pods.Items[i]
		if sel.MatchesPod(ctx, clientset, pod) {
			matched[pod.Name] = pod
			matchedNames = append(matchedNames, pod.Name)
		}
	}

	// Sample BEFORE container expansion: a pod is wholly kept or wholly
	// dropped, never split across the sample boundary by container. The
	// sample is taken once, against the initial List snapshot; pods that
	// arrive later via Watch are only added while the sample quota still
	// has room (see underSample below), since there is no "resample the
	// whole set" step in a live, incrementally-updated watch.
	sampledNames := sel.SamplePodNames(matchedNames)

	known := map[string]bool{}
	for _, name := range sampledNames {
		emitPodAdded(ctx, sel, clusterContext, matched[name], events)
		known[name] = true
	}

	backoff := 200 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		watcher, err := clientset.CoreV1().Pods(namespace).Watch(ctx, metav1.ListOptions{
			LabelSelector:   labelSelector,
			ResourceVersion: pods.ResourceVersion,
		})
		if err != nil {
			if apierrors.IsPermanent(err) {
				sendErr(ctx, errCh, apierrors.New(err, apierrors.KindSourceRead, true, "failed to watch pods"))
				return
			}
			sendErr(ctx, errCh, apierrors.New(err, apierrors.KindSourceRead, false, "failed to watch pods"))
			if !sleepBackoff(ctx, &backoff, maxBackoff) {
				return
			}
			continue
		}

		backoff = 200 * time.Millisecond

		for event := range watcher.ResultChan() {
			select {
			case <-ctx.Done():
				watcher.Stop()
				return
			default:
			}

			pod, ok := event.Object.(*corev1.Pod)
			if !ok {
				continue
			}

			switch event.Type {
			case watch.Added, watch.Modified:
				matches := sel.MatchesPod(ctx, clientset, pod)
				finished := pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed
				underSample := sel.SampleSize <= 0 || len(known) < sel.SampleSize
				if matches && !finished && !known[pod.Name] && underSample {
					emitPodAdded(ctx, sel, clusterContext, pod, events)
					known[pod.Name] = true
				} else if (!matches || finished) && known[pod.Name] {
					emitPodRemoved(clusterContext, pod, events)
					delete(known, pod.Name)
				}
			case watch.Deleted:
				if known[pod.Name] {
					emitPodRemoved(clusterContext, pod, events)
					delete(known, pod.Name)
				}
			}
		}
		// Channel closed: the watch expired, relist+rewatch.
	}
}

func emitPodAdded(ctx context.Context, sel *Selector, clusterContext string, pod *corev1.Pod, events chan<- TargetEvent) {
	for _, c := range pod.Spec.Containers {
		if !sel.MatchesContainer(c.Name) {
			continue
		}
		t := model.Target{
			ClusterContext: clusterContext,
			Namespace:      pod.Namespace,
			PodName:        pod.Name,
			ContainerName:  c.Name,
		}
		select {
		case events <- TargetEvent{Kind: TargetAdded, Target: t}:
		case <-ctx.Done():
			return
		}
	}
}

func emitPodRemoved(clusterContext string, pod *corev1.Pod, events chan<- TargetEvent) {
	for _, c := range pod.Spec.Containers {
		t := model.Target{
			ClusterContext: clusterContext,
			Namespace:      pod.Namespace,
			PodName:        pod.Name,
			ContainerName:  c.Name,
		}
		events <- TargetEvent{Kind: TargetRemoved, Target: t}
	}
}

func sendErr(ctx context.Context, errCh chan<- error, err error) {
	select {
	case errCh <- err:
	case <-ctx.Done():
	}
}

func sleepBackoff(ctx context.Context, backoff *time.Duration, max time.Duration) bool {
	select {
	case <-time.After(*backoff):
		*backoff = time.Duration(float64(*backoff) * 2)
		if *backoff > max {
			*backoff = max
		}
		return true
	case <-ctx.Done():
		return false
	}
}
