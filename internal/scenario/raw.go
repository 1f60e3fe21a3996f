// README: Scenario Loader (component 13, §4.9/§6). Grounded on
// internal/config.Load's env-var-with-typed-defaults + fail-fast philosophy,
// generalized from panic-on-missing-env to a returned *ValidationError since
// a scenario file is untrusted external input, not operator-owned
// environment configuration.
package scenario

import "encoding/json"

// Raw is the on-the-wire JSON shape named in §6. No field is a pointer:
// validation checks zero values explicitly, so a missing key and an
// explicit zero are treated the same way.
type Raw struct {
	OrderGenerator  RawOrderGenerator  `json:"order_generator"`
	SimpyEnv        RawSimpyEnv        `json:"simpy_env"`
	GridMap         RawGridMap         `json:"grid_map"`
	Drivers         RawDrivers         `json:"drivers"`
	Establishments  RawEstablishments  `json:"establishments"`
	RewardObjective int                `json:"reward_objective"`
}

type RawOrderGenerator struct {
	Type         string          `json:"type"`
	TotalOrders  int             `json:"total_orders"`
	TimeWindow   float64         `json:"time_window"`
	LambdaRate   float64         `json:"lambda_rate"`
	RateFunction json.RawMessage `json:"rate_function"`
	MaxRate      float64         `json:"max_rate"`
}

type RawSimpyEnv struct {
	MaxTimeStep float64 `json:"max_time_step"`
}

type RawGridMap struct {
	Size int `json:"size"`
}

type RawDrivers struct {
	Num                int       `json:"num"`
	Vel                [2]float64 `json:"vel"`
	MaxDelayPercentage float64   `json:"max_delay_percentage"`
	MaxCapacity        int       `json:"max_capacity"`
}

type RawEstablishments struct {
	Num                        int        `json:"num"`
	PrepareTime                [2]float64 `json:"prepare_time"`
	OperatingRadius            [2]float64 `json:"operating_radius"`
	ProductionCapacity         [2]float64 `json:"production_capacity"`
	PercentageAllocationDriver float64    `json:"percentage_allocation_driver"`
}

// Decode parses a scenario JSON document. Decoding errors (malformed JSON)
// are wrapped as a ValidationError on the empty field name so callers can
// treat every loader failure uniformly.
func Decode(data []byte) (Raw, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Raw{}, &ValidationError{Field: "", Reason: err.Error()}
	}
	return raw, nil
}
