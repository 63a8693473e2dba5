package schedule

// Entry is a time and activity pair used to seed a schedule.
type Entry struct {
	Time     string `yaml:"time" json:"time"`
	Activity string `yaml:"activity" json:"activity"`
}

// DefaultRoutine is the recurring routine seeded on first run.
var DefaultRoutine = []Entry{
	{Time: "07:00", Activity: "Wake up"},
	{Time: "07:30", Activity: "Morning exercise"},
	{Time: "08:00", Activity: "Breakfast"},
	{Time: "09:00", Activity: "Work"},
	{Time: "12:00", Activity: "Lunch"},
	{Time: "13:00", Activity: "Continue Working"},
	{Time: "18:00", Activity: "Dinner"},
	{Time: "20:00", Activity: "Relaxation time"},
	{Time: "22:00", Activity: "Prepare for bed"},
	{Time: "23:00", Activity: "Sleep"},
}

// Seed adds entries as recurring items, stopping at the first error.
func (e *Engine) Seed(entries []Entry) error {
	for _, en := range entries {
		if _, err := e.Add(en.Time, en.Activity, ""); err != nil {
			return err
		}
	}
	return nil
}
