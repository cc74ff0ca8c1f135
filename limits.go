package a109

// Limits bounds what ReadBundle will decompress.
type Limits struct {
	MaxBundleSize    uint64 // total uncompressed bytes over all entries
	MaxBundleEntries int
	MaxFileSize      uint64 // uncompressed bytes of a single entry
}

func defaultLimits() Limits {
	return Limits{
		MaxBundleSize:    1 << 20, // a full set is about 61 KiB
		MaxBundleEntries: 16,
		MaxFileSize:      64 << 10,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxBundleSize == 0 {
		l.MaxBundleSize = d.MaxBundleSize
	}
	if l.MaxBundleEntries == 0 {
		l.MaxBundleEntries = d.MaxBundleEntries
	}
	if l.MaxFileSize == 0 {
		l.MaxFileSize = d.MaxFileSize
	}
	return l
}
