package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpelletier/rosterd/infra/rosterfile"
)

// Expected lists the outcomes a scenario asserts about its run. Counts are
// used rather than per-student placements because ranking order decides who
// wins a contested slot.
type Expected struct {
	FillRate   float64 `yaml:"fill_rate"`
	Created    int     `yaml:"created"`
	Removed    int     `yaml:"removed"`
	Unresolved int     `yaml:"unresolved"`
	Degraded   int     `yaml:"degraded"`
	// Strategies maps strategy label to expected assignment count. Only
	// listed strategies are checked.
	Strategies map[string]int `yaml:"strategies,omitempty"`
}

// Scenario describes one roster day and the result the engine must produce
// for it. The roster block uses the same document format the run command
// loads from disk.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Seed        int64           `yaml:"seed,omitempty"`
	Roster      rosterfile.File `yaml:"roster"`
	Expected    Expected        `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
