package domain

import "time"

// ProgressSummary is a read-only view of a profile for display.
type ProgressSummary struct {
	Username            string
	TotalScore          int
	CurrentStreak       int
	LongestStreak       int
	ChallengesCompleted int
	PerfectScores       int
	LessonsCompleted    int
	ModulesCompleted    int
	ModulesTouched      int
	AllModulesComplete  bool
	BadgeCount          int
	LastLogin           time.Time
	Modules             []ModuleSummary
}

type ModuleSummary struct {
	Name            string
	Title           string
	LessonsDone     int
	LessonsTotal    int
	ChallengesDone  int
	ChallengesTotal int
	Complete        bool
}

// Summarize projects p against the tracked modules.
func (p *Profile) Summarize(tracked []TrackedModule) ProgressSummary {
	s := ProgressSummary{
		Username:            p.Username,
		TotalScore:          p.TotalScore,
		CurrentStreak:       p.CurrentStreak,
		LongestStreak:       p.LongestStreak,
		ChallengesCompleted: p.Progress.ChallengeCount,
		PerfectScores:       p.Progress.PerfectScores,
		LessonsCompleted:    len(p.Progress.LessonsCompleted),
		ModulesTouched:      p.TouchedModules(),
		AllModulesComplete:  p.Progress.ModulesCompleted,
		BadgeCount:          len(p.Badges),
		LastLogin:           p.LastLogin,
	}
	for _, tm := range tracked {
		ms := ModuleSummary{
			Name:            tm.Name,
			Title:           tm.Title,
			LessonsDone:     p.Progress.Modules[tm.Name],
			LessonsTotal:    tm.Lessons,
			ChallengesDone:  p.Progress.ModuleProgress[tm.Name].Completed,
			ChallengesTotal: tm.Challenges,
			Complete:        p.ModuleComplete(tm),
		}
		if ms.Complete {
			s.ModulesCompleted++
		}
		s.Modules = append(s.Modules, ms)
	}
	return s
}
