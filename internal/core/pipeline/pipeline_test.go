package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

func sliceSource(docs ...domain.Document) Source {
	return func(_ context.Context, emit func(domain.Document) error) error {
		for _, doc := range docs {
			if err := emit(doc); err != nil {
				return err
			}
		}
		return nil
	}
}

func collect(got *[]string) Stage {
	return func(_ context.Context, doc domain.Document) (Verdict, error) {
		*got = append(*got, doc.ID())
		return Pass, nil
	}
}

func TestRun_PreservesOrder(t *testing.T) {
	var got []string
	err := Run(context.Background(),
		sliceSource(
			domain.Document{"_id": "a"},
			domain.Document{"_id": "b"},
			domain.Document{"_id": "c"},
		),
		collect(&got),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestRun_FilterDrops(t *testing.T) {
	var got []string
	err := Run(context.Background(),
		sliceSource(
			domain.Document{"_id": "keep-1"},
			domain.Document{"_id": "skip"},
			domain.Document{"_id": "keep-2"},
		),
		Filter(func(doc domain.Document) bool { return doc.ID() != "skip" }),
		collect(&got),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"keep-1", "keep-2"}, got)
}

func TestRun_StageErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	var got []string

	failOnB := func(_ context.Context, doc domain.Document) (Verdict, error) {
		if doc.ID() == "b" {
			return Drop, boom
		}
		return Pass, nil
	}

	err := Run(context.Background(),
		sliceSource(
			domain.Document{"_id": "a"},
			domain.Document{"_id": "b"},
			domain.Document{"_id": "c"},
		),
		failOnB,
		collect(&got),
	)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, got)
}

func TestRun_SourceErrorPropagates(t *testing.T) {
	broken := errors.New("connection reset")
	src := func(_ context.Context, emit func(domain.Document) error) error {
		if err := emit(domain.Document{"_id": "a"}); err != nil {
			return err
		}
		return broken
	}

	var got []string
	err := Run(context.Background(), src, collect(&got))

	require.ErrorIs(t, err, broken)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := func(ctx context.Context, emit func(domain.Document) error) error {
		for {
			if err := emit(domain.Document{"_id": "x"}); err != nil {
				return err
			}
		}
	}

	err := Run(ctx, src, Filter(func(domain.Document) bool { return true }))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_NoStages(t *testing.T) {
	err := Run(context.Background(), sliceSource(domain.Document{"_id": "a"}))
	assert.NoError(t, err)
}

func TestRun_EarlierRecordsCompleteBeforeFailure(t *testing.T) {
	boom := errors.New("boom")
	failOnBad := func(_ context.Context, doc domain.Document) (Verdict, error) {
		if doc.ID() == "bad" {
			return Drop, boom
		}
		return Pass, nil
	}

	for i := 0; i < 500; i++ {
		var sunk []string
		err := Run(context.Background(),
			sliceSource(
				domain.Document{"_id": "a"},
				domain.Document{"_id": "b"},
				domain.Document{"_id": "bad"},
				domain.Document{"_id": "c"},
			),
			failOnBad,
			Filter(func(domain.Document) bool { return true }),
			collect(&sunk),
		)
		require.ErrorIs(t, err, boom)
		require.Equal(t, []string{"a", "b"}, sunk)
	}
}

func TestRun_RecordLeavesChainBeforeNextIsRead(t *testing.T) {
	var trace []string
	src := func(_ context.Context, emit func(domain.Document) error) error {
		for _, id := range []string{"a", "b"} {
			trace = append(trace, "read "+id)
			if err := emit(domain.Document{"_id": id}); err != nil {
				return err
			}
		}
		return nil
	}
	stage := func(name string) Stage {
		return func(_ context.Context, doc domain.Document) (Verdict, error) {
			trace = append(trace, name+" "+doc.ID())
			return Pass, nil
		}
	}

	require.NoError(t, Run(context.Background(), src, stage("validate"), stage("sink")))
	assert.Equal(t, []string{
		"read a", "validate a", "sink a",
		"read b", "validate b", "sink b",
	}, trace)
}
