package project

import (
	"encoding/json"
	"time"
)

// dateKey is the calendar-date key format used by the statistics history
// maps.
const dateKey = "2006-01-02"

// WritingSession records a single sitting.
type WritingSession struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	WordsWritten      int       `json:"words_written"`
	CharactersWritten int       `json:"characters_written"`
	Notes             string    `json:"notes,omitempty"`
}

// DurationMinutes returns the session length in minutes, zero when the
// session has no end time.
func (ws WritingSession) DurationMinutes() float64 {
	if ws.EndTime.IsZero() || ws.EndTime.Before(ws.StartTime) {
		return 0
	}
	return ws.EndTime.Sub(ws.StartTime).Minutes()
}

// WordsPerMinute returns the writing rate for the session.
func (ws WritingSession) WordsPerMinute() float64 {
	d := ws.DurationMinutes()
	if d <= 0 {
		return 0
	}
	return float64(ws.WordsWritten) / d
}

// DailyStats aggregates one calendar day of writing.
type DailyStats struct {
	Date               string  `json:"date"` // 2006-01-02
	WordsWritten       int     `json:"words_written"`
	CharactersWritten  int     `json:"characters_written"`
	WritingTimeMinutes float64 `json:"writing_time_minutes"`
	SessionCount       int     `json:"session_count"`
}

// WordsPerMinute returns the day's average writing rate.
func (d DailyStats) WordsPerMinute() float64 {
	if d.WritingTimeMinutes <= 0 {
		return 0
	}
	return float64(d.WordsWritten) / d.WritingTimeMinutes
}

// Statistics holds the running counters and date-keyed history of a
// project. Derived quantities (weekly totals, streaks, trends) are always
// computed from the history maps, never stored.
type Statistics struct {
	TotalWords      int `json:"total_words"`
	TotalCharacters int `json:"total_characters"`
	TotalDocuments  int `json:"total_documents"`

	SessionCount            int     `json:"session_count"`
	TotalWritingTimeMinutes float64 `json:"total_writing_time_minutes"`
	WordsToday              int     `json:"words_today"`
	CharactersToday         int     `json:"characters_today"`

	DailyWordCounts map[string]int        `json:"daily_word_counts"`
	DailyStats      map[string]DailyStats `json:"daily_statistics"`
	Sessions        []WritingSession      `json:"writing_sessions"`

	DailyWordGoal   int `json:"daily_word_goal"`
	WeeklyWordGoal  int `json:"weekly_word_goal"`
	MonthlyWordGoal int `json:"monthly_word_goal"`

	// Milestones maps milestone name to achievement time.
	Milestones map[string]time.Time `json:"milestones"`
}

// DefaultStatistics returns statistics with goal defaults applied.
func DefaultStatistics() Statistics {
	return Statistics{
		DailyWordCounts: map[string]int{},
		DailyStats:      map[string]DailyStats{},
		DailyWordGoal:   1000,
		WeeklyWordGoal:  7000,
		MonthlyWordGoal: 30000,
		Milestones:      map[string]time.Time{},
	}
}

// UpdateWordCount records the project's new total word and character
// counts and folds the delta into today's history entry.
func (s *Statistics) UpdateWordCount(wordCount, characterCount int) {
	s.TotalWords = wordCount
	s.TotalCharacters = characterCount

	if s.DailyWordCounts == nil {
		s.DailyWordCounts = map[string]int{}
	}
	today := time.Now().Format(dateKey)

	previousTotal := 0
	for day, words := range s.DailyWordCounts {
		if day != today {
			previousTotal += words
		}
	}
	s.WordsToday = wordCount - previousTotal
	if s.WordsToday < 0 {
		s.WordsToday = 0
	}
	s.DailyWordCounts[today] = s.WordsToday
}

// AddSession records a completed writing session and folds it into
// today's entries.
func (s *Statistics) AddSession(durationMinutes float64, wordsWritten, charactersWritten int) {
	now := time.Now()

	s.SessionCount++
	s.TotalWritingTimeMinutes += durationMinutes
	s.Sessions = append(s.Sessions, WritingSession{
		StartTime:         now.Add(-time.Duration(durationMinutes * float64(time.Minute))),
		EndTime:           now,
		WordsWritten:      wordsWritten,
		CharactersWritten: charactersWritten,
	})

	if s.DailyStats == nil {
		s.DailyStats = map[string]DailyStats{}
	}
	today := now.Format(dateKey)
	day := s.DailyStats[today]
	day.Date = today
	day.WordsWritten += wordsWritten
	day.CharactersWritten += charactersWritten
	day.WritingTimeMinutes += durationMinutes
	day.SessionCount++
	s.DailyStats[today] = day

	s.WordsToday += wordsWritten
	s.CharactersToday += charactersWritten
}

// AverageWordsPerSession returns total words divided by session count.
func (s *Statistics) AverageWordsPerSession() float64 {
	if s.SessionCount == 0 {
		return 0
	}
	return float64(s.TotalWords) / float64(s.SessionCount)
}

// WordsThisWeek sums the daily history from Monday of the current week
// through today.
func (s *Statistics) WordsThisWeek() int {
	now := time.Now()
	weekStart := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))

	total := 0
	for i := 0; i < 7; i++ {
		total += s.DailyWordCounts[weekStart.AddDate(0, 0, i).Format(dateKey)]
	}
	return total
}

// WordsThisMonth sums the daily history from the first of the current
// month through today.
func (s *Statistics) WordsThisMonth() int {
	now := time.Now()
	total := 0
	for d := 1; d <= now.Day(); d++ {
		key := time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, now.Location()).Format(dateKey)
		total += s.DailyWordCounts[key]
	}
	return total
}

// WritingStreak returns the number of consecutive days ending today with
// a positive word count.
func (s *Statistics) WritingStreak() int {
	if len(s.DailyWordCounts) == 0 {
		return 0
	}
	streak := 0
	day := time.Now()
	for {
		if s.DailyWordCounts[day.Format(dateKey)] <= 0 {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// TrendPoint is one day of the productivity trend.
type TrendPoint struct {
	Date  string
	Words int
}

// ProductivityTrend returns one point per day for the most recent N days,
// oldest first, with zero for days without history.
func (s *Statistics) ProductivityTrend(days int) []TrendPoint {
	now := time.Now()
	trend := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(dateKey)
		trend = append(trend, TrendPoint{Date: key, Words: s.DailyWordCounts[key]})
	}
	return trend
}

// AddMilestone records a milestone achievement. A zero achievedAt means
// now.
func (s *Statistics) AddMilestone(name string, achievedAt time.Time) {
	if s.Milestones == nil {
		s.Milestones = map[string]time.Time{}
	}
	if achievedAt.IsZero() {
		achievedAt = time.Now()
	}
	s.Milestones[name] = achievedAt
}

// Milestone returns the achievement time of a milestone, ok=false when
// not yet achieved.
func (s *Statistics) Milestone(name string) (time.Time, bool) {
	ts, ok := s.Milestones[name]
	return ts, ok
}

// DailyGoalAchieved reports whether today's word goal has been met.
func (s *Statistics) DailyGoalAchieved() bool {
	return s.WordsToday >= s.DailyWordGoal
}

// WeeklyGoalAchieved reports whether this week's word goal has been met.
func (s *Statistics) WeeklyGoalAchieved() bool {
	return s.WordsThisWeek() >= s.WeeklyWordGoal
}

// MonthlyGoalAchieved reports whether this month's word goal has been met.
func (s *Statistics) MonthlyGoalAchieved() bool {
	return s.WordsThisMonth() >= s.MonthlyWordGoal
}

// GoalProgress returns the 0..1 completion ratio for the daily, weekly,
// and monthly goals.
func (s *Statistics) GoalProgress() map[string]float64 {
	ratio := func(have, want int) float64 {
		if want <= 0 {
			return 0
		}
		r := float64(have) / float64(want)
		if r > 1 {
			return 1
		}
		return r
	}
	return map[string]float64{
		"daily":   ratio(s.WordsToday, s.DailyWordGoal),
		"weekly":  ratio(s.WordsThisWeek(), s.WeeklyWordGoal),
		"monthly": ratio(s.WordsThisMonth(), s.MonthlyWordGoal),
	}
}

// Summary returns a flat map of headline statistics for display.
func (s *Statistics) Summary() map[string]any {
	return map[string]any{
		"total_words":               s.TotalWords,
		"total_characters":          s.TotalCharacters,
		"total_documents":           s.TotalDocuments,
		"session_count":             s.SessionCount,
		"total_writing_hours":       s.TotalWritingTimeMinutes / 60,
		"words_today":               s.WordsToday,
		"words_this_week":           s.WordsThisWeek(),
		"words_this_month":          s.WordsThisMonth(),
		"writing_streak":            s.WritingStreak(),
		"average_words_per_session": s.AverageWordsPerSession(),
		"goal_progress":             s.GoalProgress(),
		"milestones_count":          len(s.Milestones),
	}
}

// UnmarshalJSON decodes statistics on top of the defaults, so goal fields
// absent from older files keep their default thresholds.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	type alias Statistics
	a := alias(DefaultStatistics())
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.DailyWordCounts == nil {
		a.DailyWordCounts = map[string]int{}
	}
	if a.DailyStats == nil {
		a.DailyStats = map[string]DailyStats{}
	}
	if a.Milestones == nil {
		a.Milestones = map[string]time.Time{}
	}
	*s = Statistics(a)
	return nil
}

// Clone returns a deep copy of the statistics.
func (s *Statistics) Clone() Statistics {
	out := *s
	out.DailyWordCounts = make(map[string]int, len(s.DailyWordCounts))
	for k, v := range s.DailyWordCounts {
		out.DailyWordCounts[k] = v
	}
	out.DailyStats = make(map[string]DailyStats, len(s.DailyStats))
	for k, v := range s.DailyStats {
		out.DailyStats[k] = v
	}
	out.Sessions = append([]WritingSession(nil), s.Sessions...)
	out.Milestones = make(map[string]time.Time, len(s.Milestones))
	for k, v := range s.Milestones {
		out.Milestones[k] = v
	}
	return out
}
