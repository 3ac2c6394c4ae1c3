package cache

import "strings"

// keyVersion is bumped when a cached payload changes shape.
const keyVersion = "v1"

// ChartKeyOpts identifies a chart request.
type ChartKeyOpts struct {
	Name      string
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int
	Lat       float64
	Lon       float64
	UTCOffset float64
}

// ArtifactKeyOpts identifies one rendering of a chart.
type ArtifactKeyOpts struct {
	Format       string
	Compact      bool
	Scale        float64
	StrokeWidth  float64
	Detailed     bool
	Conjunctions bool
	Icons        string
}

// Keyer derives cache keys.
type Keyer interface {
	ChartKey(opts ChartKeyOpts) string
	LocationKey(query string) string
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ChartKey(o ChartKeyOpts) string {
	return hashKey("chart:"+keyVersion, o.Name, o.Year, o.Month, o.Day, o.Hour, o.Minute, o.Lat, o.Lon, o.UTCOffset)
}

// LocationKey folds case and surrounding space so equivalent queries share an entry.
func (DefaultKeyer) LocationKey(query string) string {
	return hashKey("location:"+keyVersion, strings.ToLower(strings.TrimSpace(query)))
}

func (DefaultKeyer) ArtifactKey(chartHash string, o ArtifactKeyOpts) string {
	return hashKey("artifact:"+keyVersion, chartHash, o.Format, o.Compact, o.Scale, o.StrokeWidth, o.Detailed, o.Conjunctions, o.Icons)
}

// ScopedKeyer prefixes every key of an inner keyer, e.g. per API tenant.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ChartKey(o ChartKeyOpts) string { return k.prefix + k.inner.ChartKey(o) }

func (k *ScopedKeyer) LocationKey(q string) string { return k.prefix + k.inner.LocationKey(q) }

func (k *ScopedKeyer) ArtifactKey(chartHash string, o ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(chartHash, o)
}
