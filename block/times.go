package block

import (
	"fmt"
	"time"

	times "gopkg.in/djherbis/times.v1"
)

// BackingTimes reports the birth, access, change and modification times of
// the device's backing file, for diagnostics (cmd/fsck prints these). Birth
// time is only available on platforms/filesystems that track it; HasBirth
// reports whether it does.
type BackingTimes struct {
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
	BirthTime  time.Time
	HasBirth   bool
}

// BackingTimes reads the backing file's timestamps via the OS-specific stat
// fields times.v1 abstracts over.
func (d *Device) BackingTimes() (BackingTimes, error) {
	f, err := d.sysFile()
	if err != nil {
		return BackingTimes{}, fmt.Errorf("block: backing times unavailable: %w", err)
	}
	t, err := times.Stat(f.Name())
	if err != nil {
		return BackingTimes{}, fmt.Errorf("block: stat backing file: %w", err)
	}
	bt := BackingTimes{
		ModTime:    t.ModTime(),
		AccessTime: t.AccessTime(),
		HasBirth:   t.HasBirthTime(),
	}
	if t.HasChangeTime() {
		bt.ChangeTime = t.ChangeTime()
	}
	if t.HasBirthTime() {
		bt.BirthTime = t.BirthTime()
	}
	return bt, nil
}
