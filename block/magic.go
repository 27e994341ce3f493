package block

import (
	"bytes"
	"fmt"

	"github.com/pkg/xattr"
)

// magicXattr is the extended attribute name stamped onto a backing regular
// file at format time. Checking it on Open is a cheap pre-check: a backing
// file without it is either unformatted or not ours, and we can say so
// without paying for a sector read.
const magicXattr = "user.kernfs.magic"

var magicValue = []byte("kernfs-v1")

// TagMagic stamps the device's backing file with the kernfs magic xattr.
// Called once, from Format. If the backing filesystem doesn't support
// extended attributes (common for tmpfs mounts and some CI environments),
// the error is swallowed: the xattr check is a fast-path convenience, not a
// correctness requirement, and CheckMagic degrades the same way.
func (d *Device) TagMagic() error {
	f, err := d.sysFile()
	if err != nil {
		// not a real file (e.g. an in-memory test double); nothing to tag.
		return nil
	}
	if err := xattr.FSet(f, magicXattr, magicValue); err != nil {
		if xattr.IsNotExist(err) || isNotSupported(err) {
			d.log.WithError(err).Debug("backing filesystem does not support xattrs, skipping magic tag")
			return nil
		}
		return fmt.Errorf("block: tag magic xattr: %w", err)
	}
	return nil
}

// CheckMagic reports whether the device's backing file carries the kernfs
// magic xattr. A false return with a nil error means the xattr is simply
// absent or unsupported, not that anything is wrong.
func (d *Device) CheckMagic() (bool, error) {
	f, err := d.sysFile()
	if err != nil {
		return false, nil
	}
	got, err := xattr.FGet(f, magicXattr)
	if err != nil {
		if xattr.IsNotExist(err) || isNotSupported(err) {
			return false, nil
		}
		return false, fmt.Errorf("block: read magic xattr: %w", err)
	}
	return bytes.Equal(got, magicValue), nil
}

func isNotSupported(err error) bool {
	// xattr wraps ENOTSUP/EOPNOTSUPP in a *xattr.Error; comparing the
	// formatted message avoids importing syscall-specific error values that
	// differ across platforms.
	var xerr *xattr.Error
	if e, ok := err.(*xattr.Error); ok {
		xerr = e
	}
	return xerr != nil && xerr.Err != nil && (xerr.Err.Error() == "operation not supported" ||
		xerr.Err.Error() == "not supported")
}
