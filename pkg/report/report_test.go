package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/db"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
)

func TestTopKeywords(t *testing.T) {
	captions := []string{
		"morning routine before work #fyp #routine",
		"my skincare routine explained",
		"gym routine and meal prep #viral",
		"meal prep sunday",
	}

	top := TopKeywords(captions, 3)
	require.Equal(t, []string{"routine", "meal", "prep"}, top)
}

func TestKeywordFrequencyStripsHashtagsAndStopwords(t *testing.T) {
	freq := KeywordFrequency([]string{"the #dance challenge!! #fyp"})

	require.Equal(t, 1, freq["dance"])
	require.Equal(t, 1, freq["challenge"])
	require.NotContains(t, freq, "the")
	require.NotContains(t, freq, "fyp")
}

func TestTopKeywordsLimitExceedsVocabulary(t *testing.T) {
	top := TopKeywords([]string{"sunset timelapse"}, 10)
	require.Len(t, top, 2)
}

func TestFromTracker(t *testing.T) {
	tracker := stats.NewTracker()
	now := time.Now()
	tracker.RecordAttempt(models.MethodEmbed, true, 0.0001, 100*time.Millisecond, now)
	tracker.RecordAttempt(models.MethodEmbed, true, 0.0001, 100*time.Millisecond, now)
	tracker.RecordAttempt(models.MethodWeb, false, 0.00015, 200*time.Millisecond, now)

	r := FromTracker(tracker)

	require.EqualValues(t, 3, r.TotalRequests)
	require.EqualValues(t, 2, r.TotalSuccesses)
	require.Equal(t, "66.7%", r.OverallSuccessRate)
	require.Equal(t, "$0.0004", r.TotalCost)

	require.Len(t, r.Methods, 2)
	require.Equal(t, "embed", r.Methods[0].Method)
	require.Equal(t, "100.0%", r.Methods[0].SuccessRate)
	require.Equal(t, "web", r.Methods[1].Method)
	require.Equal(t, "0.0%", r.Methods[1].SuccessRate)
}

func TestFromTrackerEmpty(t *testing.T) {
	r := FromTracker(stats.NewTracker())
	require.EqualValues(t, 0, r.TotalRequests)
	require.Equal(t, "0.0%", r.OverallSuccessRate)
	require.Empty(t, r.Methods)
}

func TestFromDB(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.CreateBatch("batch-1", time.Now(), 2))
	writer := database.NewBatchWriter("batch-1")
	writer.DetectLanguage = func(string) string { return "english" }

	success := models.Result{
		Target:      "https://example.test/v/1",
		MethodName:  "embed",
		Success:     true,
		Cost:        0.0001,
		Duration:    90 * time.Millisecond,
		CompletedAt: time.Now(),
		Metrics:     models.PostMetrics{Views: 1000, Likes: 80, Caption: "meal prep sunday"},
	}
	failure := models.Result{
		Target:      "https://example.test/v/2",
		MethodName:  "web",
		Cost:        0.00015,
		Duration:    400 * time.Millisecond,
		CompletedAt: time.Now(),
		Error:       "page returned status 403",
	}

	require.NoError(t, writer.RecordAttempt(success))
	require.NoError(t, writer.RecordAttempt(failure))
	require.NoError(t, writer.Save(success))

	r, err := FromDB(database, "batch-1", 5)
	require.NoError(t, err)

	require.EqualValues(t, 2, r.TotalRequests)
	require.EqualValues(t, 1, r.TotalSuccesses)
	require.Equal(t, "50.0%", r.OverallSuccessRate)
	require.Contains(t, r.TopKeywords, "meal")
	require.Equal(t, map[string]int{"english": 1}, r.Languages)
}

func TestCheapestViable(t *testing.T) {
	config := models.DefaultConfig()
	require.Equal(t, "embed", CheapestViable(config))
}
