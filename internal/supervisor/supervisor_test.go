package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/archsyscall/klogstream/internal/fanout"
	"github.com/archsyscall/klogstream/internal/kube"
	"github.com/archsyscall/klogstream/internal/model"
	"github.com/archsyscall/klogstream/internal/selector"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"
)

type recordingSink struct {
	got chan model.LogRecord
}

func newRecordingSink() *recordingSink { return &recordingSink{got: make(chan model.LogRecord, 16)} }

func (r *recordingSink) Name() string { return "recording" }
func (r *recordingSink) Deliver(_ context.Context, rec model.LogRecord) error {
	r.got <- rec
	return nil
}
func (r *recordingSink) Close() error { return nil }

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "default"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "app"}},
		},
		Status: corev1.PodStatus{Phase: corev1.PodRunning},
	}
	clientset := k8sfake.NewSimpleClientset(pod)

	sel, err := selector.NewBuilder().Namespace("default").Build()
	if err != nil {
		t.Fatalf("selector build error: %v", err)
	}

	sink := newRecordingSink()

	sup, err := New(Config{
		KubeClientProvider: &kube.ClientProvider{Clientset: clientset},
		Selector:           sel,
		Routes:             []fanout.Route{{Sink: sink, Policy: fanout.Blocking, QueueCap: 16}},
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if sup.State() != Configuring {
		t.Fatalf("expected initial state Configuring, got %v", sup.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sup.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if sup.State() != Running {
		t.Fatalf("expected state Running after Start, got %v", sup.State())
	}

	time.Sleep(100 * time.Millisecond)
	sup.Stop()

	if sup.State() != Stopped {
		t.Fatalf("expected state Stopped after Stop, got %v", sup.State())
	}
}
