package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/controller"
	"github.com/nerrad567/milight-hub/internal/infrastructure/config"
	"github.com/nerrad567/milight-hub/internal/infrastructure/logging"
	"github.com/nerrad567/milight-hub/internal/infrastructure/mqtt"
	"github.com/nerrad567/milight-hub/internal/radio"
	"github.com/nerrad567/milight-hub/internal/radio/loopback"
)

type sendOptions struct {
	deviceType string
	deviceID   string
	groupID    uint8
	repeats    int
}

func newSendCmd(configPath func() string) *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send [flags] JSON",
		Short: "Transmit one command and exit",
		Long: `Transmit one JSON lighting command to a bulb group and print the
resulting group state.

With the loopback backend nothing is put on the air; the frames that would
have been sent are printed instead.`,
		Example: `  milightd send --id 0x2 --group 1 '{"status":"on","level":40}'
  milightd send --id 0x2 --group 0 '{"command":"pair"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(configPath(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.deviceType, "type", "t", radio.FamilyRGBCCT, "Bulb family")
	cmd.Flags().StringVarP(&opts.deviceID, "id", "i", "", "Device id (0x-prefixed hex or decimal)")
	cmd.Flags().Uint8VarP(&opts.groupID, "group", "g", 0, "Group id (0 addresses all groups)")
	cmd.Flags().IntVarP(&opts.repeats, "repeats", "r", 0, "Resend count (default from config)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// loadConfigOrDefault loads path, falling back to the built-in defaults when
// the file does not exist. One-shot commands work without a config file.
func loadConfigOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// parseDeviceID accepts 0x-prefixed hex or decimal, as topics do.
func parseDeviceID(s string) (uint16, error) {
	id, err := mqtt.ParseID(s, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid device id %q: %w", s, err)
	}
	return uint16(id), nil
}

func runSend(configPath string, opts sendOptions, payload string, out io.Writer) error {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	deviceID, err := parseDeviceID(opts.deviceID)
	if err != nil {
		return err
	}
	req, err := bulb.DecodeRequest([]byte(payload))
	if err != nil {
		return err
	}

	dev, closeDevice, err := openDevice(cfg.Radio, log)
	if err != nil {
		return fmt.Errorf("opening radio: %w", err)
	}
	defer func() {
		if closeErr := closeDevice(); closeErr != nil {
			log.Error("error closing radio", "error", closeErr)
		}
	}()

	ctrlOpts := controllerOptions(cfg, dev, nil, log)
	ctrlOpts.DeviceTypes = []string{opts.deviceType}
	if opts.repeats > 0 {
		ctrlOpts.ResendCount = opts.repeats
	}
	ctrl, err := controller.New(ctrlOpts)
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}
	if err := ctrl.Begin(); err != nil {
		return fmt.Errorf("initialising radio: %w", err)
	}

	cmd := controller.NewCommand(bulb.Key{
		DeviceType: opts.deviceType,
		DeviceID:   deviceID,
		GroupID:    opts.groupID,
	}, req)
	if err := ctrl.Dispatch(cmd); err != nil {
		return fmt.Errorf("sending command: %w", err)
	}

	if lb, ok := dev.(*loopback.Device); ok {
		printFrames(out, lb.SentFrames())
	}

	select {
	case r := <-ctrl.Reports():
		enc := json.NewEncoder(out)
		if err := enc.Encode(r.State); err != nil {
			return fmt.Errorf("encoding state: %w", err)
		}
	default:
	}
	return nil
}

// printFrames writes each distinct frame once, collapsing the repeats and
// hop copies of a single send.
func printFrames(out io.Writer, frames [][]byte) {
	var last string
	for _, f := range frames {
		h := hex.EncodeToString(f)
		if h == last {
			continue
		}
		fmt.Fprintf(out, "frame %s\n", h)
		last = h
	}
}
