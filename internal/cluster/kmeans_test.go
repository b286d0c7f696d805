package cluster

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestClusterSeparatesTopics(t *testing.T) {
	t.Parallel()

	texts := []string{
		"rover lands on mars surface rover",
		"stocks rally as markets surge",
		"mars rover sends surface images",
		"markets fall as stocks slump",
	}

	labels, err := NewKMeans().Cluster(context.Background(), texts, 2)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(labels) != len(texts) {
		t.Fatalf("expected %d labels, got %d", len(texts), len(labels))
	}
	if labels[0] != labels[2] || labels[1] != labels[3] || labels[0] == labels[1] {
		t.Fatalf("unexpected grouping %v", labels)
	}
}

func TestClusterIsDeterministic(t *testing.T) {
	t.Parallel()

	texts := []string{"alpha beta", "gamma delta", "alpha gamma", "beta delta", "alpha beta gamma"}
	first, _ := NewKMeans().Cluster(context.Background(), texts, 3)
	for i := 0; i < 5; i++ {
		got, _ := NewKMeans().Cluster(context.Background(), texts, 3)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v differs from %v", i, got, first)
		}
	}
}

func TestClusterCapsK(t *testing.T) {
	t.Parallel()

	labels, err := NewKMeans().Cluster(context.Background(), []string{"one text", "another text"}, 5)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	for _, l := range labels {
		if l < 0 || l > 1 {
			t.Fatalf("label %d out of range for k=2", l)
		}
	}
}

func TestClusterRejectsInvalidK(t *testing.T) {
	t.Parallel()

	if _, err := NewKMeans().Cluster(context.Background(), []string{"x"}, 0); !errors.Is(err, ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}
}
