package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pecanrolls/rolls-gateway/business/sys/cache"
	"go.uber.org/goleak"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReadThrough(t *testing.T) {
	t.Log("Given the need to serve values from the cache.")
	{
		c := cache.New[string]("test", 100*time.Millisecond)
		go c.Start()
		defer c.Stop()

		var calls atomic.Int32
		fetch := func(ctx context.Context) (string, error) {
			n := calls.Add(1)
			return string(rune('a' + n - 1)), nil
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen the key is requested twice within the ttl.", testID)
		{
			first, err := c.Get(context.Background(), "balance:addr", fetch)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to fetch: %v", failed, testID, err)
			}

			second, err := c.Get(context.Background(), "balance:addr", fetch)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the cache: %v", failed, testID, err)
			}

			if first != second || calls.Load() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould fetch once and serve the same value: %s %s %d", failed, testID, first, second, calls.Load())
			}
			t.Logf("\t%s\tTest %d:\tShould fetch once and serve the same value.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a different key is requested.", testID)
		{
			v, err := c.Get(context.Background(), "utxos:addr", fetch)
			if err != nil || v != "b" || calls.Load() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould fetch the new key: %s %v", failed, testID, v, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fetch the new key.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the ttl has passed.", testID)
		{
			time.Sleep(150 * time.Millisecond)

			v, err := c.Get(context.Background(), "balance:addr", fetch)
			if err != nil || v != "c" || calls.Load() != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould fetch a fresh value: %s %v", failed, testID, v, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fetch a fresh value.", success, testID)
		}
	}
}

func TestErrorsNotCached(t *testing.T) {
	t.Log("Given the need to never serve a failure as a cached value.")
	{
		c := cache.New[int]("test", time.Minute)

		testID := 0
		t.Logf("\tTest %d:\tWhen the fetch fails and then succeeds.", testID)
		{
			var calls int
			fetch := func(ctx context.Context) (int, error) {
				calls++
				if calls == 1 {
					return 0, errors.New("node down")
				}
				return 1000, nil
			}

			if _, err := c.Get(context.Background(), "balance:addr", fetch); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould return the fetch error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould return the fetch error.", success, testID)

			if c.Len() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not store the failure.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not store the failure.", success, testID)

			v, err := c.Get(context.Background(), "balance:addr", fetch)
			if err != nil || v != 1000 || calls != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould fetch again after a failure: %d %v", failed, testID, v, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fetch again after a failure.", success, testID)
		}
	}
}

func TestConcurrentMisses(t *testing.T) {
	t.Log("Given the need to serve concurrent requests for the same key.")
	{
		c := cache.New[int]("test", time.Minute)

		testID := 0
		t.Logf("\tTest %d:\tWhen many requests miss at once.", testID)
		{
			release := make(chan struct{})
			var calls atomic.Int32
			fetch := func(ctx context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 7, nil
			}

			const n = 20
			var wg sync.WaitGroup
			var started atomic.Int32
			results := make([]int, n)
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func(i int) {
					defer wg.Done()
					started.Add(1)
					results[i], _ = c.Get(context.Background(), "utxos:addr", fetch)
				}(i)
			}

			for started.Load() != n {
				time.Sleep(time.Millisecond)
			}
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			for i, v := range results {
				if v != 7 {
					t.Fatalf("\t%s\tTest %d:\tShould give every caller the value, caller %d got %d", failed, testID, i, v)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould give every caller the value.", success, testID)

			if calls.Load() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould fetch once for all callers: %d", failed, testID, calls.Load())
			}
			t.Logf("\t%s\tTest %d:\tShould fetch once for all callers.", success, testID)
		}
	}
}

func TestCallerCancelled(t *testing.T) {
	t.Log("Given the need to share a fetch between callers that come and go.")
	{
		c := cache.New[int]("test", time.Minute)

		testID := 0
		t.Logf("\tTest %d:\tWhen the caller that started the fetch goes away.", testID)
		{
			entered := make(chan struct{})
			release := make(chan struct{})
			var calls atomic.Int32
			fetch := func(ctx context.Context) (int, error) {
				calls.Add(1)
				close(entered)
				<-release
				if err := ctx.Err(); err != nil {
					return 0, err
				}
				return 7, nil
			}

			ctxA, cancelA := context.WithCancel(context.Background())
			errA := make(chan error, 1)
			go func() {
				_, err := c.Get(ctxA, "balance:addr", fetch)
				errA <- err
			}()
			<-entered

			type result struct {
				v   int
				err error
			}
			resB := make(chan result, 1)
			go func() {
				v, err := c.Get(context.Background(), "balance:addr", fetch)
				resB <- result{v, err}
			}()
			time.Sleep(50 * time.Millisecond)

			cancelA()
			select {
			case err := <-errA:
				if !errors.Is(err, context.Canceled) {
					t.Fatalf("\t%s\tTest %d:\tShould return the cancelled caller's error: %v", failed, testID, err)
				}
			case <-time.After(time.Second):
				t.Fatalf("\t%s\tTest %d:\tShould stop waiting once the caller is cancelled.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould stop waiting once the caller is cancelled.", success, testID)

			close(release)
			b := <-resB
			if b.err != nil || b.v != 7 {
				t.Fatalf("\t%s\tTest %d:\tShould still give the other caller the value: %d %v", failed, testID, b.v, b.err)
			}
			t.Logf("\t%s\tTest %d:\tShould still give the other caller the value.", success, testID)

			if calls.Load() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould fetch once: %d", failed, testID, calls.Load())
			}
			t.Logf("\t%s\tTest %d:\tShould fetch once.", success, testID)

			if v, err := c.Get(context.Background(), "balance:addr", fetch); err != nil || v != 7 {
				t.Fatalf("\t%s\tTest %d:\tShould have stored the value: %d %v", failed, testID, v, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have stored the value.", success, testID)
		}
	}
}
