package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type MatrixCfg struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Serpentine bool `yaml:"serpentine"`
}

type SPICfg struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
}

type WebCfg struct {
	Addr string `yaml:"addr"` // e.g. :8080
}

type MQTTCfg struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"` // tcp://host:1883
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Prefix   string `yaml:"prefix"` // topic prefix, default "cosmicled"
	QoS      byte   `yaml:"qos"`
}

// Params mirrors the runtime parameter set as persisted defaults.
type Params struct {
	Brightness    float64 `yaml:"brightness" json:"brightness"`
	Speed         float64 `yaml:"speed" json:"speed"`
	Scale         float64 `yaml:"scale" json:"scale"`
	FPS           int     `yaml:"fps" json:"fps"`
	HueOffset     float64 `yaml:"hue_offset" json:"hue_offset"`
	Saturation    float64 `yaml:"saturation" json:"saturation"`
	Gamma         float64 `yaml:"gamma" json:"gamma"`
	ActivePalette string  `yaml:"active_palette" json:"active_palette"`
	ActiveProgram string  `yaml:"active_program" json:"active_program"`
}

// File is the on-disk configuration (config.yaml).
type File struct {
	Matrix   MatrixCfg `yaml:"matrix"`
	Driver   string    `yaml:"driver"` // "spi" | "term" | "sim"
	LogLevel string    `yaml:"log_level,omitempty"`

	SPI  SPICfg  `yaml:"spi,omitempty"`
	Web  WebCfg  `yaml:"web,omitempty"`
	MQTT MQTTCfg `yaml:"mqtt,omitempty"`

	Defaults Params `yaml:"defaults"`
}

// Default returns the stock configuration used when no config.yaml exists.
func Default() *File {
	return &File{
		Matrix:   MatrixCfg{Width: 10, Height: 10, Serpentine: true},
		Driver:   "sim",
		LogLevel: "info",
		SPI:      SPICfg{Dev: "/dev/spidev0.0", SpeedHz: 2400000},
		Web:      WebCfg{Addr: ":8080"},
		MQTT:     MQTTCfg{Broker: "tcp://localhost:1883", ClientID: "cosmicled", Prefix: "cosmicled", QoS: 1},
		Defaults: Params{
			Brightness:    0.5,
			Speed:         1.0,
			Scale:         1.0,
			FPS:           30,
			HueOffset:     0,
			Saturation:    1.0,
			Gamma:         2.2,
			ActivePalette: "rainbow",
			ActiveProgram: "cosmic",
		},
	}
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *File) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
