package selector

import (
	"context"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func makePod(namespace, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning},
	}
}

// TestWatchSamplesBeforeExpansion verifies that Sample is applied to the
// matched pod set before container expansion: with 5 matching pods and a
// SampleSize of 2, only 2 distinct pods' containers should ever reach
// events, never a partial container subset of a dropped pod.
func TestWatchSamplesBeforeExpansion(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	const namespace = "default"
	for i := 0; i < 5; i++ {
		pod := makePod(namespace, "pod-"+string(rune('a'+i)))
		if _, err := clientset.CoreV1().Pods(namespace).Create(context.Background(), pod, metav1.CreateOptions{}); err != nil {
			t.Fatalf("create pod: %v", err)
		}
	}

	sel := New()
	sel.Namespaces = []string{namespace}
	sel.SampleSize = 2
	sel.SampleSeed = 42

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan TargetEvent, 32)
	errCh := make(chan error, 32)

	go watchNamespace(ctx, clientset, sel, "test-cluster", namespace, events, errCh)

	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
collect:
	for {
		select {
		case ev := <-events:
			seen[ev.Target.PodName] = true
		case err := <-errCh:
			t.Fatalf("unexpected error: %v", err)
		case <-time.After(200 * time.Millisecond):
			break collect
		case <-timeout:
			break collect
		}
	}

	if len(seen) != sel.SampleSize {
		t.Fatalf("expected exactly %d sampled pods, got %d: %v", sel.SampleSize, len(seen), seen)
	}
}

// TestWatchRespectsSampleCapOnLateArrivals confirms that pods added via
// Watch after the initial sample quota is already filled are not emitted,
// since there is no whole-set resample step in a live watcher.
func TestWatchRespectsSampleCapOnLateArrivals(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	const namespace = "default"
	for i := 0; i < 2; i++ {
		pod := makePod(namespace, "early-"+string(rune('a'+i)))
		if _, err := clientset.CoreV1().Pods(namespace).Create(context.Background(), pod, metav1.CreateOptions{}); err != nil {
			t.Fatalf("create pod: %v", err)
		}
	}

	sel := New()
	sel.Namespaces = []string{namespace}
	sel.SampleSize = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan TargetEvent, 32)
	errCh := make(chan error, 32)

	go watchNamespace(ctx, clientset, sel, "test-cluster", namespace, events, errCh)
	time.Sleep(100 * time.Millisecond)

	latePod := makePod(namespace, "late-pod")
	if _, err := clientset.CoreV1().Pods(namespace).Create(context.Background(), latePod, metav1.CreateOptions{}); err != nil {
		t.Fatalf("create late pod: %v", err)
	}

	seen := map[string]bool{}
collect:
	for {
		select {
		case ev := <-events:
			seen[ev.Target.PodName] = true
		case err := <-errCh:
			t.Fatalf("unexpected error: %v", err)
		case <-time.After(300 * time.Millisecond):
			break collect
		}
	}

	if seen["late-pod"] {
		t.Errorf("late-arriving pod should not be emitted once the sample quota is filled, got: %v", seen)
	}
	if len(seen) != sel.SampleSize {
		t.Errorf("expected %d sampled pods from the initial list, got %d: %v", sel.SampleSize, len(seen), seen)
	}
}
