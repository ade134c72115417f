package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cat.Days())
	assert.Greater(t, cat.TotalTasks(), 6)

	day1, ok := cat.ChallengeByID(1)
	require.True(t, ok)
	assert.Len(t, day1.Tasks, 6)
	assert.Equal(t, SubmissionOnchain, day1.SubmissionType)

	_, ok = cat.ChallengeByID(99)
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	t.Run("EmptyData", func(t *testing.T) {
		_, err := Parse([]byte(`[]`))
		assert.Error(t, err)
	})

	t.Run("DuplicateChallengeID", func(t *testing.T) {
		_, err := Parse([]byte(`[
			{"id":1,"title":"a","description":"d","homepage":"https://x.test","submissionType":"onchain","nftTitle":"n","nftDescription":"nd","tasks":[{"id":1,"title":"t","description":"d","difficulty":"easy","points":10,"proofType":"text","playersRequired":1}]},
			{"id":1,"title":"b","description":"d","homepage":"https://x.test","submissionType":"onchain","nftTitle":"n","nftDescription":"nd","tasks":[{"id":1,"title":"t","description":"d","difficulty":"easy","points":10,"proofType":"text","playersRequired":1}]}
		]`))
		assert.ErrorContains(t, err, "duplicate challenge id")
	})

	t.Run("DuplicateTaskID", func(t *testing.T) {
		_, err := Parse([]byte(`[
			{"id":1,"title":"a","description":"d","homepage":"https://x.test","submissionType":"onchain","nftTitle":"n","nftDescription":"nd","tasks":[
				{"id":1,"title":"t","description":"d","difficulty":"easy","points":10,"proofType":"text","playersRequired":1},
				{"id":1,"title":"t2","description":"d","difficulty":"easy","points":10,"proofType":"text","playersRequired":1}
			]}
		]`))
		assert.ErrorContains(t, err, "duplicate task id")
	})

	t.Run("NonSequentialIDs", func(t *testing.T) {
		_, err := Parse([]byte(`[
			{"id":2,"title":"a","description":"d","homepage":"https://x.test","submissionType":"onchain","nftTitle":"n","nftDescription":"nd","tasks":[{"id":1,"title":"t","description":"d","difficulty":"easy","points":10,"proofType":"text","playersRequired":1}]}
		]`))
		assert.ErrorContains(t, err, "sequential")
	})

	t.Run("InvalidDifficulty", func(t *testing.T) {
		_, err := Parse([]byte(`[
			{"id":1,"title":"a","description":"d","homepage":"https://x.test","submissionType":"onchain","nftTitle":"n","nftDescription":"nd","tasks":[{"id":1,"title":"t","description":"d","difficulty":"impossible","points":10,"proofType":"text","playersRequired":1}]}
		]`))
		assert.Error(t, err)
	})
}

func TestTaskRefString(t *testing.T) {
	ref := TaskRef{ChallengeID: 2, TaskID: 6}
	assert.Equal(t, "2/6", ref.String())
}

func TestChallengeHelpers(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	day1, _ := cat.ChallengeByID(1)

	task, ok := day1.Task(3)
	require.True(t, ok)
	assert.Equal(t, 3, task.ID)

	_, ok = day1.Task(42)
	assert.False(t, ok)

	assert.Equal(t, TaskRef{ChallengeID: 1, TaskID: 3}, day1.Ref(3))

	var sum uint64
	for _, tk := range day1.Tasks {
		sum += tk.Points
	}
	assert.Equal(t, sum, day1.TotalPoints())
}

func TestFormBased(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	formChallenges := cat.FormBased()
	require.NotEmpty(t, formChallenges)
	for _, ch := range formChallenges {
		assert.Equal(t, SubmissionGoogleForm, ch.SubmissionType)
		assert.NotEqual(t, 1, ch.ID)
	}
}
