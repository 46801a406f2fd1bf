package hwmon

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/markusressel/baram/internal/util"
	"golang.org/x/exp/slices"
)

const (
	// DefaultBasePath is the hwmon class directory exposed by the kernel
	DefaultBasePath = "/sys/class/hwmon"

	// MaxChannelIndex is the highest pwmN index probed per device
	MaxChannelIndex = 9
)

var (
	ErrNoChannelFound     = errors.New("no writable pwm channel found")
	ErrChannelNotFound    = errors.New("pwm channel not found")
	ErrChannelNotWritable = errors.New("pwm channel not writable")
)

// preferredChipNames lists motherboard sensor chip drivers that are known to
// expose usable fan headers. Channels of these devices win the auto-detection
// over anything else (e.g. GPU or drive bay controllers).
var preferredChipNames = []string{
	"nct6775", "nct6776", "nct6779", "nct6791", "nct6792",
	"nct6793", "nct6795", "nct6796", "nct6797", "nct6798",
	"it8720", "it8721", "it8728", "it8732", "it8771", "it8772",
	"it8781", "it8782", "it8783", "it8786", "it8790",
	"w83627", "w83667", "w83795",
	"f71882fg", "f71889fg",
	"asus_wmi_sensors", "asus-ec-sensors",
}

// Channel is a single fan header of a hwmon device, resolved to the sysfs
// files that control it.
type Channel struct {
	DevicePath string `json:"devicePath"`
	Name       string `json:"name"`
	Index      int    `json:"index"`

	PwmPath    string `json:"pwmPath"`
	EnablePath string `json:"enablePath"`
	// RpmPath is empty when the header has no tachometer input
	RpmPath string `json:"rpmPath"`

	Writable     bool   `json:"writable"`
	RejectReason string `json:"rejectReason,omitempty"`
}

func (c Channel) Id() string {
	return fmt.Sprintf("%s/pwm%d (%s)", filepath.Base(c.DevicePath), c.Index, c.Name)
}

// IsPreferred indicates whether the channel belongs to a known motherboard
// sensor chip.
func (c Channel) IsPreferred() bool {
	name := strings.ToLower(c.Name)
	return slices.ContainsFunc(preferredChipNames, func(preferred string) bool {
		return strings.Contains(name, preferred)
	})
}

// ListChannels enumerates every pwm control channel of every hwmon device
// below basePath, in deterministic (sorted by device identifier) order.
// It only reads, never writes.
func ListChannels(basePath string) []Channel {
	var channels []Channel
	for _, devicePath := range util.FindHwmonDevicePaths(basePath) {
		channels = append(channels, listDeviceChannels(devicePath)...)
	}
	return channels
}

func listDeviceChannels(devicePath string) []Channel {
	name := util.GetDeviceName(devicePath)
	if len(name) <= 0 {
		name = filepath.Base(devicePath)
	}

	var channels []Channel
	for index := 1; index <= MaxChannelIndex; index++ {
		pwmPath := filepath.Join(devicePath, fmt.Sprintf("pwm%d", index))
		enablePath := pwmPath + "_enable"

		if !util.FileExists(pwmPath) {
			continue
		}

		channel := Channel{
			DevicePath: devicePath,
			Name:       name,
			Index:      index,
			PwmPath:    pwmPath,
			EnablePath: enablePath,
		}

		rpmPath := filepath.Join(devicePath, fmt.Sprintf("fan%d_input", index))
		if util.FileExists(rpmPath) {
			channel.RpmPath = rpmPath
		}

		switch {
		case !util.FileExists(enablePath):
			channel.RejectReason = "missing enable file"
		case !util.IsWritable(pwmPath):
			channel.RejectReason = "pwm file not writable"
		case !util.IsWritable(enablePath):
			channel.RejectReason = "enable file not writable"
		default:
			channel.Writable = true
		}

		channels = append(channels, channel)
	}

	return channels
}

// Resolve picks the pwm channel to control. When device is empty, all hwmon
// devices are scanned and the best writable channel wins; otherwise the
// explicitly requested device and channel index are validated.
func Resolve(basePath string, device string, channelIndex int) (Channel, error) {
	if len(device) > 0 {
		return resolveExplicit(basePath, device, channelIndex)
	}
	return autoDetect(basePath)
}

func resolveExplicit(basePath string, device string, channelIndex int) (Channel, error) {
	devicePath, err := findDevicePath(basePath, device)
	if err != nil {
		return Channel{}, err
	}

	for _, channel := range listDeviceChannels(devicePath) {
		if channel.Index != channelIndex {
			continue
		}
		if !channel.Writable {
			return Channel{}, fmt.Errorf("%w: %s (%s)", ErrChannelNotWritable, channel.Id(), channel.RejectReason)
		}
		return channel, nil
	}

	return Channel{}, fmt.Errorf("%w: %s has no pwm%d", ErrChannelNotFound, devicePath, channelIndex)
}

func findDevicePath(basePath string, device string) (string, error) {
	// an absolute path is used as-is
	if strings.HasPrefix(device, "/") {
		if !util.FileExists(device) {
			return "", fmt.Errorf("%w: no such device: %s", ErrChannelNotFound, device)
		}
		return device, nil
	}

	for _, devicePath := range util.FindHwmonDevicePaths(basePath) {
		if filepath.Base(devicePath) == device {
			return devicePath, nil
		}
		if util.GetDeviceName(devicePath) == device {
			return devicePath, nil
		}
	}

	return "", fmt.Errorf("%w: no such device: %s", ErrChannelNotFound, device)
}

func autoDetect(basePath string) (Channel, error) {
	channels := ListChannels(basePath)

	var writable []Channel
	for _, channel := range channels {
		if channel.Writable {
			writable = append(writable, channel)
		}
	}

	if len(writable) <= 0 {
		return Channel{}, fmt.Errorf("%w%s", ErrNoChannelFound, describeCandidates(channels))
	}

	for _, channel := range writable {
		if channel.IsPreferred() {
			return channel, nil
		}
	}

	return writable[0], nil
}

// describeCandidates renders the scan result for the discovery error message,
// so a failing start tells the user what was found and why it was rejected.
func describeCandidates(channels []Channel) string {
	if len(channels) <= 0 {
		return " (no pwm capable hwmon devices present)"
	}

	var sb strings.Builder
	sb.WriteString(", candidates:")
	for _, channel := range channels {
		reason := channel.RejectReason
		if len(reason) <= 0 {
			reason = "ok"
		}
		sb.WriteString(fmt.Sprintf("\n  %s: %s", channel.Id(), reason))
	}
	return sb.String()
}
