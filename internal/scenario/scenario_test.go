package scenario

import "testing"

func validRaw() Raw {
	var raw Raw
	raw.OrderGenerator = RawOrderGenerator{Type: "poisson", TotalOrders: 10, TimeWindow: 100, LambdaRate: 0.5}
	raw.SimpyEnv = RawSimpyEnv{MaxTimeStep: 1000}
	raw.GridMap = RawGridMap{Size: 20}
	raw.Drivers = RawDrivers{Num: 3, Vel: [2]float64{1, 2}, MaxDelayPercentage: 0.1, MaxCapacity: 5}
	raw.Establishments = RawEstablishments{
		Num: 2, PrepareTime: [2]float64{2, 5}, OperatingRadius: [2]float64{3, 6},
		ProductionCapacity: [2]float64{2, 4}, PercentageAllocationDriver: 0.5,
	}
	raw.RewardObjective = 1
	return raw
}

func TestValidateAcceptsWellFormedScenario(t *testing.T) {
	cfg, err := Validate(validRaw())
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.Establishments.Count != 2 || cfg.Drivers.Count != 3 {
		t.Fatalf("unexpected translated config: %+v", cfg)
	}
	if len(cfg.Establishments.Catalog) != defaultCatalogSize {
		t.Fatalf("expected synthetic catalog of size %d, got %d", defaultCatalogSize, len(cfg.Establishments.Catalog))
	}
}

func TestValidateRejectsMissingTotalOrders(t *testing.T) {
	raw := validRaw()
	raw.OrderGenerator.TotalOrders = 0
	_, err := Validate(raw)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Field != "order_generator.total_orders" {
		t.Fatalf("expected total_orders validation error, got %v", err)
	}
}

func TestValidateRejectsBadRewardObjective(t *testing.T) {
	raw := validRaw()
	raw.RewardObjective = 11
	_, err := Validate(raw)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Field != "reward_objective" {
		t.Fatalf("expected reward_objective validation error, got %v", err)
	}
}

func TestValidateRequiresRateFunctionForNonHomogeneous(t *testing.T) {
	raw := validRaw()
	raw.OrderGenerator.Type = "non_homogeneous_poisson"
	raw.OrderGenerator.LambdaRate = 0
	_, err := Validate(raw)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Field != "order_generator.rate_function" {
		t.Fatalf("expected rate_function validation error, got %v", err)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	if err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestParseExpressionArithmetic(t *testing.T) {
	expr, err := ParseExpression("2*t + 1")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := expr.Eval(3); got != 7 {
		t.Fatalf("expected 2*3+1=7, got %v", got)
	}
}

func TestParseExpressionMinMaxAbsAndPrecedence(t *testing.T) {
	expr, err := ParseExpression("max(min(t, 5), abs(-2)) + 2^2")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := expr.Eval(1); got != 6 {
		t.Fatalf("expected max(min(1,5),abs(-2)) + 4 = max(1,2)+4 = 6, got %v", got)
	}
	if got := expr.Eval(10); got != 9 {
		t.Fatalf("expected max(min(10,5),2) + 4 = 5+4 = 9, got %v", got)
	}
}

func TestParseExpressionRejectsUnknownIdentifier(t *testing.T) {
	if _, err := ParseExpression("foo(t)"); err == nil {
		t.Fatal("expected an error for an unknown identifier")
	}
}

func TestParseExpressionRejectsTrailingGarbage(t *testing.T) {
	if _, err := ParseExpression("1 + 2 3"); err == nil {
		t.Fatal("expected an error for trailing tokens")
	}
}

func TestRateFunctionRegistryShapes(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		at   float64
		want float64
	}{
		{"constant", `{"shape":"constant","rate":3}`, 50, 3},
		{"linear", `{"shape":"linear","slope":0.1,"intercept":1}`, 10, 2},
		{"parabolic", `{"shape":"parabolic","a":1,"b":0,"c":0}`, 3, 9},
		{"piecewise", `{"shape":"piecewise","segments":[{"from":0,"to":10,"rate":1},{"from":10,"to":20,"rate":5}]}`, 15, 5},
		{"expression", `{"shape":"expression","expression":"t*t"}`, 4, 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn, err := ParseRateFunction([]byte(tc.doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fn(tc.at); got != tc.want {
				t.Fatalf("rate(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestRateFunctionRegistryRejectsUnknownShape(t *testing.T) {
	if _, err := ParseRateFunction([]byte(`{"shape":"exponential"}`)); err == nil {
		t.Fatal("expected an error for an unrecognised shape")
	}
}
