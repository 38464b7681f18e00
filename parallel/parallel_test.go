// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessInParallel_PreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	results := ProcessInParallel(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	}, Options{MaxWorkers: 2})

	for i, r := range results {
		assert.True(t, r.OK)
		assert.Equal(t, (i+1)*2, r.Value)
		assert.Equal(t, i, r.Index)
	}
}

func TestProcessInParallel_ItemTimeoutYieldsNotOK(t *testing.T) {
	items := []int{1, 2}
	results := ProcessInParallel(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	}, Options{MaxWorkers: 2, ItemTimeout: 10 * time.Millisecond})

	assert.False(t, results[0].OK)
	assert.True(t, results[1].OK)
}

func TestProcessInParallel_EmptyInput(t *testing.T) {
	results := ProcessInParallel(context.Background(), []int{}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, Options{})
	assert.Empty(t, results)
}

func TestProcessPagesInParallel_ErrorYieldsZeroValue(t *testing.T) {
	pages := []int{1, 2, 3}
	out := ProcessPagesInParallel(context.Background(), pages, func(ctx context.Context, p int) (string, error) {
		if p == 2 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}, 2)

	assert.Equal(t, "ok", out[0].Value)
	assert.Equal(t, "", out[1].Value)
	assert.Equal(t, "ok", out[2].Value)
}

func TestProcessEntitiesInBatches_EmptyReturnsEmpty(t *testing.T) {
	out := ProcessEntitiesInBatches(context.Background(), []int{}, 10, func(ctx context.Context, batch []int) ([]int, error) {
		return batch, nil
	})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestProcessEntitiesInBatches_SplitsAndConcatenates(t *testing.T) {
	entities := []int{1, 2, 3, 4, 5}
	out := ProcessEntitiesInBatches(context.Background(), entities, 2, func(ctx context.Context, batch []int) ([]int, error) {
		doubled := make([]int, len(batch))
		for i, v := range batch {
			doubled[i] = v * 2
		}
		return doubled, nil
	})
	assert.Equal(t, []int{2, 4, 6, 8, 10}, out)
}

func TestComputeWorkerCount_ClampsToRange(t *testing.T) {
	n := computeWorkerCount(Config{MinWorkers: 2, MaxWorkers: 8}, 100, nil)
	assert.GreaterOrEqual(t, n, 2)
	assert.LessOrEqual(t, n, 8)
}
