package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *CatalogService {
	t.Helper()
	svc := &CatalogService{}
	require.NoError(t, svc.Start())
	return svc
}

func TestCatalogOrdering(t *testing.T) {
	svc := newTestCatalog(t)

	lessons := svc.List()
	require.Len(t, lessons, 5)
	for i, lesson := range lessons {
		require.Equal(t, i+1, lesson.OrderNumber)
	}

	require.False(t, lessons[0].IsFinal)
	require.True(t, lessons[len(lessons)-1].IsFinal)
}

func TestCatalogLookups(t *testing.T) {
	svc := newTestCatalog(t)

	first, err := svc.ByOrder(1)
	require.NoError(t, err)

	byID, err := svc.ByID(first.ID)
	require.NoError(t, err)
	require.Equal(t, first, byID)

	_, err = svc.ByID("no-such-lesson")
	require.Error(t, err)

	_, err = svc.ByOrder(99)
	require.Error(t, err)
}

func TestCatalogNextPrevious(t *testing.T) {
	svc := newTestCatalog(t)

	first, err := svc.ByOrder(1)
	require.NoError(t, err)
	last, err := svc.ByOrder(len(svc.List()))
	require.NoError(t, err)

	next, err := svc.Next(first.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, 2, next.OrderNumber)

	prev, err := svc.Previous(first.ID)
	require.NoError(t, err)
	require.Nil(t, prev)

	end, err := svc.Next(last.ID)
	require.NoError(t, err)
	require.Nil(t, end)
}

func TestCheckAnswerNormalization(t *testing.T) {
	svc := newTestCatalog(t)

	first, err := svc.ByOrder(1)
	require.NoError(t, err)

	tests := []struct {
		submission string
		want       bool
	}{
		{first.Question.Answer, true},
		{"  " + first.Question.Answer + "  ", true},
		{"=sum(a1:a5)", true},
		{"=SUM(A1:A6)", false},
		{"", false},
	}

	for _, tc := range tests {
		got, err := svc.CheckAnswer(first.ID, tc.submission)
		require.NoError(t, err)
		require.Equalf(t, tc.want, got, "submission %q", tc.submission)
	}

	_, err = svc.CheckAnswer("no-such-lesson", "whatever")
	require.Error(t, err)
}
