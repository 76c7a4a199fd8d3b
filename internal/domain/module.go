package domain

// TrackedModule is a training module whose completion counts toward the
// all-modules-complete flag.
type TrackedModule struct {
	Name       string
	Title      string
	Lessons    int
	Challenges int
}

func DefaultModules() []TrackedModule {
	return []TrackedModule{
		{Name: "basics", Title: "Linux Basics", Lessons: 10, Challenges: 2},
		{Name: "networking", Title: "Networking", Lessons: 8, Challenges: 2},
		{Name: "forensics", Title: "Digital Forensics", Lessons: 6, Challenges: 2},
		{Name: "permissions", Title: "File Permissions", Lessons: 7, Challenges: 2},
		{Name: "cryptography", Title: "Cryptography", Lessons: 5, Challenges: 2},
		{Name: "web_security", Title: "Web Security", Lessons: 5, Challenges: 2},
	}
}
