package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/refdatahub/refgate/internal/core/errs"
)

func TestExecutorTimeout(t *testing.T) {
	stalled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer stalled.Close()

	exec := NewExecutor()
	start := time.Now()
	_, err := exec.Do(context.Background(), &Request{URL: stalled.URL, Timeout: 50 * time.Millisecond})
	elapsed := time.Since(start)

	var ce *errs.Error
	if !errors.As(err, &ce) || ce.Kind != errs.KindTimeout {
		t.Fatalf("err = %v, want KindTimeout", err)
	}
	if ce.BudgetMs != 50 {
		t.Errorf("BudgetMs = %d, want 50", ce.BudgetMs)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("aborted after %v, want ~50ms", elapsed)
	}
}

func TestExecutorExternalCancelNotTimeout(t *testing.T) {
	stalled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer stalled.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	exec := NewExecutor()
	_, err := exec.Do(ctx, &Request{URL: stalled.URL, Timeout: 5 * time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	var ce *errs.Error
	if errors.As(err, &ce) {
		t.Fatalf("caller cancellation reclassified as %v", ce.Kind)
	}
}

func TestExecutorDisabledTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer slow.Close()

	exec := NewExecutor()
	resp, err := exec.Do(context.Background(), &Request{URL: slow.URL, Timeout: 0})
	if err != nil {
		t.Fatalf("Do with disabled timeout: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestExecutorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream broken"}`))
	}))
	defer srv.Close()

	exec := NewExecutor()
	resp, err := exec.Do(context.Background(), &Request{URL: srv.URL})

	var ce *errs.Error
	if !errors.As(err, &ce) || ce.Kind != errs.KindHTTP {
		t.Fatalf("err = %v, want KindHTTP", err)
	}
	if ce.StatusCode != http.StatusBadGateway || ce.Message != "upstream broken" {
		t.Errorf("classified = %+v, want 502/upstream broken", ce)
	}
	// The buffered response stays available so the retry layer can read
	// headers like Retry-After.
	if resp == nil || resp.StatusCode != http.StatusBadGateway {
		t.Errorf("resp = %+v, want buffered 502", resp)
	}
}

func TestExecutorNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	exec := NewExecutor()
	_, err := exec.Do(context.Background(), &Request{URL: addr, Timeout: time.Second})

	var ce *errs.Error
	if !errors.As(err, &ce) || ce.Kind != errs.KindNetwork {
		t.Fatalf("err = %v, want KindNetwork", err)
	}
}

func TestExecutorEmptyURL(t *testing.T) {
	exec := NewExecutor()
	_, err := exec.Do(context.Background(), &Request{})

	var ce *errs.Error
	if !errors.As(err, &ce) || ce.Kind != errs.KindValidation {
		t.Fatalf("err = %v, want KindValidation", err)
	}
}
