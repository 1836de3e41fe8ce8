package config

import "github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"

// Config represents the pricer configuration file
type Config struct {
	LogLevel  string  `yaml:"log_level"`
	LogFormat string  `yaml:"log_format,omitempty"` // json or text
	Server    *Server `yaml:"server,omitempty"`
	Pricing   Pricing `yaml:"pricing"`
}

// Server holds the daemon listen addresses
type Server struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
}

// Pricing describes the default pricing job
type Pricing struct {
	Contract   Contract   `yaml:"contract"`
	Market     Market     `yaml:"market"`
	Simulation Simulation `yaml:"simulation"`
}

// Contract holds the option terms
type Contract struct {
	OptionKind models.OptionKind `yaml:"option_kind"`
	Strike     float64           `yaml:"strike"`
	Quantity   float64           `yaml:"quantity"`
}

// Market holds the underlying and rate inputs
type Market struct {
	Spot         float64 `yaml:"spot"`
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	Volatility   float64 `yaml:"volatility"`
}

// Simulation holds the Monte Carlo settings
type Simulation struct {
	TimeToExpiry float64 `yaml:"time_to_expiry"` // year fraction
	NumTimeSteps int     `yaml:"num_time_steps"`
	NumScenarios int     `yaml:"num_scenarios"`
	InitialSeed  int64   `yaml:"initial_seed"`
	Concurrent   bool    `yaml:"concurrent"`
	Workers      int     `yaml:"workers,omitempty"` // 0 means GOMAXPROCS
}

// Request flattens the pricing section into a models.PricingRequest
func (p Pricing) Request() models.PricingRequest {
	return models.PricingRequest{
		Strike:       p.Contract.Strike,
		Spot:         p.Market.Spot,
		RiskFreeRate: p.Market.RiskFreeRate,
		Volatility:   p.Market.Volatility,
		TimeToExpiry: p.Simulation.TimeToExpiry,
		OptionKind:   p.Contract.OptionKind,
		NumTimeSteps: p.Simulation.NumTimeSteps,
		NumScenarios: p.Simulation.NumScenarios,
		Concurrent:   p.Simulation.Concurrent,
		InitialSeed:  p.Simulation.InitialSeed,
		Quantity:     p.Contract.Quantity,
		Workers:      p.Simulation.Workers,
	}
}
