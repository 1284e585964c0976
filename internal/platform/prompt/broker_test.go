package prompt

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBroker_AnswerDeliversChoice(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	req := Request{ID: "p1", UserID: "u1", Question: "pick", Options: []string{"Shoot", "Pass"}}

	done := make(chan struct{})
	var got string
	var err error
	go func() {
		defer close(done)
		got, err = broker.Await(context.Background(), req, 2*time.Second)
	}()

	// Wait for registration.
	deadline := time.Now().Add(time.Second)
	for {
		if len(broker.PendingFor("u1")) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("prompt never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if answerErr := broker.Answer("p1", "u1", "Pass"); answerErr != nil {
		t.Fatalf("answer failed: %v", answerErr)
	}

	<-done
	if err != nil {
		t.Fatalf("await failed: %v", err)
	}
	if got != "Pass" {
		t.Fatalf("unexpected choice: got=%q want=%q", got, "Pass")
	}
}

func TestBroker_TimeoutReturnsErrTimeout(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	req := Request{ID: "p2", UserID: "u1", Options: []string{"Shoot"}}

	_, err := broker.Await(context.Background(), req, 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if len(broker.PendingFor("u1")) != 0 {
		t.Fatal("prompt must be cleaned up after timeout")
	}
}

func TestBroker_RejectsWrongUserAndUnknownLabel(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	req := Request{ID: "p3", UserID: "u1", Options: []string{"Shoot"}}

	go func() {
		_, _ = broker.Await(context.Background(), req, time.Second)
	}()

	deadline := time.Now().Add(time.Second)
	for len(broker.PendingFor("u1")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("prompt never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := broker.Answer("p3", "intruder", "Shoot"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong user must look like a missing prompt, got %v", err)
	}
	if err := broker.Answer("p3", "u1", "Backflip"); err == nil {
		t.Fatal("unknown label must be rejected")
	}
	if err := broker.Answer("p3", "u1", "Shoot"); err != nil {
		t.Fatalf("valid answer failed: %v", err)
	}
}
