package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/milight-hub/internal/controller"
	"github.com/nerrad567/milight-hub/internal/infrastructure/logging"
	"github.com/nerrad567/milight-hub/internal/radio"
)

func newSniffCmd(configPath func() string) *cobra.Command {
	var deviceType string

	cmd := &cobra.Command{
		Use:   "sniff",
		Short: "Print commands heard from physical remotes",
		Long: `Listen on the radio and print one JSON line per frame received from a
remote: the addressed group and the decoded request. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSniff(cmd.Context(), configPath(), deviceType, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&deviceType, "type", "t", radio.FamilyRGBCCT, "Bulb family to listen for")
	return cmd
}

// sniffLine is one printed observation.
type sniffLine struct {
	DeviceType string `json:"device_type"`
	DeviceID   string `json:"device_id"`
	GroupID    uint8  `json:"group_id"`
	Update     any    `json:"update"`
}

func runSniff(ctx context.Context, configPath, deviceType string, out io.Writer) error {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	dev, closeDevice, err := openDevice(cfg.Radio, log)
	if err != nil {
		return fmt.Errorf("opening radio: %w", err)
	}
	defer func() {
		if closeErr := closeDevice(); closeErr != nil {
			log.Error("error closing radio", "error", closeErr)
		}
	}()

	opts := controllerOptions(cfg, dev, nil, log)
	opts.DeviceTypes = []string{deviceType}
	ctrl, err := controller.New(opts)
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}
	if err := ctrl.Begin(); err != nil {
		return fmt.Errorf("initialising radio: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx)
	}()

	log.Info("listening for remotes", "device_type", deviceType)
	enc := json.NewEncoder(out)
	for {
		select {
		case err := <-done:
			return err
		case r := <-ctrl.Reports():
			if r.Source != controller.SourceRadio || r.Update == nil {
				continue
			}
			line := sniffLine{
				DeviceType: r.Key.DeviceType,
				DeviceID:   fmt.Sprintf("0x%04X", r.Key.DeviceID),
				GroupID:    r.Key.GroupID,
				Update:     r.Update,
			}
			if err := enc.Encode(line); err != nil {
				log.Warn("failed to print frame", "error", err)
			}
		}
	}
}
