package sequence_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	mu     sync.Mutex
	values map[sequence.CounterKey]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{values: make(map[sequence.CounterKey]int64)}
}

func (c *fakeCounter) IncrementAndGet(_ context.Context, key sequence.CounterKey) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.values[key]++
	return c.values[key], nil
}

var glKey = sequence.CounterKey{Slug: "GL", EnabledFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}

func TestMonotonic_NextVal(t *testing.T) {
	counter := newFakeCounter()
	s, err := sequence.New(sequence.KindMonotonic, counter, glKey, "")
	require.NoError(t, err)
	assert.Equal(t, sequence.KindMonotonic, s.Kind())

	asOf := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	for want := int64(1); want <= 3; want++ {
		v, err := s.NextVal(context.Background(), asOf)
		require.NoError(t, err)
		assert.Equal(t, want, v.N)
		assert.Empty(t, v.Period)
	}

	v, err := s.NextVal(context.Background(), asOf.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "4", v.String(), "monotonic counters ignore the date")
}

func TestDateReset_RestartsPerPeriod(t *testing.T) {
	counter := newFakeCounter()
	s, err := sequence.New(sequence.KindDateReset, counter, glKey, "")
	require.NoError(t, err)

	feb := time.Date(2020, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)

	got := make([]string, 0, 4)
	for _, d := range []time.Time{feb, feb, mar, feb} {
		v, err := s.NextVal(context.Background(), d)
		require.NoError(t, err)
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"202002-1", "202002-2", "202003-1", "202002-3"}, got)
}

func TestDateReset_CustomLayout(t *testing.T) {
	s := sequence.NewDateReset(newFakeCounter(), glKey, "2006")
	v, err := s.NextVal(context.Background(), time.Date(2021, 7, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2021-1", v.String())
}

func TestNew_Errors(t *testing.T) {
	_, err := sequence.New("FIBONACCI", newFakeCounter(), glKey, "")
	assert.ErrorIs(t, err, sequence.ErrUnknownKind)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = sequence.New(sequence.KindMonotonic, nil, glKey, "")
	assert.Error(t, err)
}

func TestNextVal_PropagatesCounterError(t *testing.T) {
	counter := newFakeCounter()
	counter.err = apperrors.NewTransientError("busy", errors.New("locked"))

	_, err := sequence.NewMonotonic(counter, glKey).NextVal(context.Background(), time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestMonotonic_ConcurrentCallersGetDistinctValues(t *testing.T) {
	const callers = 64
	s := sequence.NewMonotonic(newFakeCounter(), glKey)

	var wg sync.WaitGroup
	values := make(chan int64, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.NextVal(context.Background(), time.Now())
			if err == nil {
				values <- v.N
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, callers)
	for v := range values {
		assert.False(t, seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, callers)
}
