package space2d

import (
	"log"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

// Settings holds the project wide defaults a Server starts with. Every new
// space copies them into its own parameters, and every default area copies
// the gravity and damping values.
type Settings struct {
	// Gravity is the magnitude of the default area gravity. Default 980.
	Gravity float64
	// GravityVector is the direction of the default area gravity. Default (0, 1).
	GravityVector vec.Vec2
	// LinearDamp is the default area linear damping. Default 0.1.
	LinearDamp float64
	// AngularDamp is the default area angular damping. Default 1.
	AngularDamp float64

	// SolverIterations is the fixed number of solve passes per tick. Default 16.
	SolverIterations int
	// SleepLinearThreshold is the linear speed under which a body counts as still. Default 2.
	SleepLinearThreshold float64
	// SleepAngularThreshold is the angular speed (radians) under which a body counts as still. Default 8 degrees.
	SleepAngularThreshold float64
	// TimeBeforeSleep is how long every body of an island must stay still before it sleeps. Default 0.5.
	TimeBeforeSleep float64

	// ContactRecycleRadius is the distance under which a new contact inherits the accumulated impulse of an old one. Default 1.
	ContactRecycleRadius float64
	// ContactMaxAllowedPenetration is the penetration the solver leaves uncorrected. Default 0.3.
	ContactMaxAllowedPenetration float64
	// ContactDefaultBias is the fraction of penetration corrected per tick. Default 0.3.
	ContactDefaultBias float64
	// ConstraintDefaultBias is the fraction of joint error corrected per tick. Default 0.2.
	ConstraintDefaultBias float64

	// Workers bounds the goroutines used for the setup and solve phases. Default GOMAXPROCS.
	Workers int
	// ThreadedHost tells the server that Step runs on a goroutine of its
	// own. Body direct states then only resolve between Sync and EndSync.
	ThreadedHost bool
	// Debug turns internal invariant violations into panics.
	Debug bool
	// Logger receives every diagnostic. Default writes to stderr.
	Logger *log.Logger
}

// DefaultSettings returns the settings a server uses when none are given.
func DefaultSettings() Settings {
	return Settings{
		Gravity:                      980,
		GravityVector:                vec.Vec2{X: 0, Y: 1},
		LinearDamp:                   0.1,
		AngularDamp:                  1,
		SolverIterations:             16,
		SleepLinearThreshold:         2,
		SleepAngularThreshold:        mgl64.DegToRad(8),
		TimeBeforeSleep:              0.5,
		ContactRecycleRadius:         1,
		ContactMaxAllowedPenetration: 0.3,
		ContactDefaultBias:           0.3,
		ConstraintDefaultBias:        0.2,
		Workers:                      runtime.GOMAXPROCS(0),
		Logger:                       log.New(os.Stderr, "space2d: ", log.LstdFlags),
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.SolverIterations <= 0 {
		s.SolverIterations = d.SolverIterations
	}
	if s.Workers <= 0 {
		s.Workers = d.Workers
	}
	if s.Logger == nil {
		s.Logger = d.Logger
	}
	return s
}
