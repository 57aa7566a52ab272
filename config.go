package diffdrive

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Config holds the kinematic and safety parameters of a differential-drive
// base. The zero value of any field is replaced by its default at
// construction; a populated Config is immutable once handed to New.
type Config struct {
	// TrackWidth is the lateral distance between the drive wheels in meters.
	TrackWidth float64 `json:"track_width_m"`
	// RadiansPerMeter converts linear wheel travel to wheel angle.
	RadiansPerMeter float64 `json:"radians_per_meter"`
	// PublishTransform enables the odometry->base transform alongside the
	// odometry message.
	PublishTransform bool   `json:"publish_tf"`
	OdometryFrame    string `json:"odometry_frame"`
	BaseFrame        string `json:"base_frame"`
	// MovingThreshold is the linear speed below which the base is considered
	// at rest, in m/s.
	MovingThreshold float64 `json:"moving_threshold"`
	// Timeout is how long a command stays fresh. Once the newest command is
	// older than this, the desired velocity is forced to zero.
	Timeout float64 `json:"timeout_s"`
	// Velocity and acceleration limits, linear (m/s, m/s^2) and angular
	// (rad/s, rad/s^2).
	MaxVelocityX     float64 `json:"max_velocity_x"`
	MaxVelocityR     float64 `json:"max_velocity_r"`
	MaxAccelerationX float64 `json:"max_acceleration_x"`
	MaxAccelerationR float64 `json:"max_acceleration_r"`
}

// DefaultConfig returns the parameter set of the reference platform.
func DefaultConfig() Config {
	return Config{
		TrackWidth:       0.33665,
		RadiansPerMeter:  17.4978147374,
		PublishTransform: true,
		OdometryFrame:    "odom",
		BaseFrame:        "base_link",
		MovingThreshold:  0.0001,
		Timeout:          0.25,
		MaxVelocityX:     1.0,
		MaxVelocityR:     4.5,
		MaxAccelerationX: 0.75,
		MaxAccelerationR: 3.0,
	}
}

// ensureDefaults fills zero-valued fields from DefaultConfig. Explicit
// negative values are left for Validate to reject.
func (cfg *Config) ensureDefaults() {
	def := DefaultConfig()
	if cfg.TrackWidth == 0 {
		cfg.TrackWidth = def.TrackWidth
	}
	if cfg.RadiansPerMeter == 0 {
		cfg.RadiansPerMeter = def.RadiansPerMeter
	}
	if cfg.OdometryFrame == "" {
		cfg.OdometryFrame = def.OdometryFrame
	}
	if cfg.BaseFrame == "" {
		cfg.BaseFrame = def.BaseFrame
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.TrackWidth == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "track_width_m")
	}
	if cfg.TrackWidth < 0 {
		return utils.NewConfigValidationError(path, errors.New("track_width_m must be positive"))
	}
	if cfg.RadiansPerMeter == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "radians_per_meter")
	}
	if cfg.RadiansPerMeter < 0 {
		return utils.NewConfigValidationError(path, errors.New("radians_per_meter must be positive"))
	}
	if cfg.Timeout < 0 {
		return utils.NewConfigValidationError(path, errors.New("timeout_s cannot be negative"))
	}
	if cfg.MovingThreshold < 0 {
		return utils.NewConfigValidationError(path, errors.New("moving_threshold cannot be negative"))
	}
	if cfg.MaxVelocityX < 0 || cfg.MaxVelocityR < 0 {
		return utils.NewConfigValidationError(path, errors.New("velocity limits cannot be negative"))
	}
	if cfg.MaxAccelerationX < 0 || cfg.MaxAccelerationR < 0 {
		return utils.NewConfigValidationError(path, errors.New("acceleration limits cannot be negative"))
	}
	return nil
}

func (cfg *Config) timeout() time.Duration {
	return time.Duration(cfg.Timeout * float64(time.Second))
}
