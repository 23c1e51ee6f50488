package main

import (
	"fmt"

	"github.com/nerrad567/milight-hub/internal/controller"
	"github.com/nerrad567/milight-hub/internal/infrastructure/config"
	"github.com/nerrad567/milight-hub/internal/infrastructure/logging"
	"github.com/nerrad567/milight-hub/internal/radio"
	"github.com/nerrad567/milight-hub/internal/radio/loopback"
	"github.com/nerrad567/milight-hub/internal/radio/nrf24"
	"github.com/nerrad567/milight-hub/internal/state"
)

// openDevice opens the configured radio backend.
//
// Returns:
//   - radio.Device: The transceiver, not yet initialised (the controller calls Begin)
//   - func() error: Releases the hardware; never nil on success
//   - error: If the SPI port or CE pin cannot be opened
func openDevice(cfg config.RadioConfig, log *logging.Logger) (radio.Device, func() error, error) {
	switch cfg.Backend {
	case config.BackendLoopback:
		dev := loopback.New()
		dev.SetLogger(log.Component("loopback"))
		return dev, func() error { return nil }, nil
	case config.BackendNRF24:
		drv, err := nrf24.Open(nrf24.Config{
			SPIBus:      cfg.SPIBus,
			SPIClockHz:  cfg.SPIClockHz,
			CEPin:       cfg.CEPin,
			PayloadSize: cfg.PayloadSize,
		})
		if err != nil {
			return nil, nil, err
		}
		return drv, drv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown radio backend %q", cfg.Backend)
	}
}

// controllerOptions maps the loaded configuration onto controller options.
func controllerOptions(cfg *config.Config, dev radio.Device, store *state.Store, log *logging.Logger) controller.Options {
	return controller.Options{
		Device:              dev,
		Store:               store,
		DeviceTypes:         cfg.Radio.DeviceTypes,
		ResendCount:         cfg.Radio.ResendCount,
		PacketRepeatMinimum: cfg.Radio.PacketRepeatMinimum,
		ThrottleThreshold:   cfg.Radio.ThrottleThreshold,
		ThrottleSensitivity: cfg.Radio.ThrottleSensitivity,
		PollInterval:        cfg.Radio.PollInterval,
		FlushInterval:       cfg.Database.FlushInterval,
		QueueSize:           cfg.Radio.QueueSize,
		StateFields:         cfg.MQTT.Topics.StateFields,
		Logger:              log.Component("controller"),
	}
}
