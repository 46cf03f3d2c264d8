package compressor

import "sync"

var deltaBufPool = sync.Pool{
	New: func() any { return new([]byte) },
}

// deltaEncode writes the delta transform of src into dst and returns it.
// out[i] = in[i] - in[i-dist], with bytes before the start taken as zero.
// This is the byte stream produced by the xz delta filter.
func deltaEncode(dst, src []byte, dist int) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]

	n := min(dist, len(src))
	copy(dst[:n], src[:n])
	for i := n; i < len(src); i++ {
		dst[i] = src[i] - src[i-dist]
	}
	return dst
}

// deltaDecode inverts deltaEncode in place.
func deltaDecode(p []byte, dist int) {
	for i := dist; i < len(p); i++ {
		p[i] += p[i-dist]
	}
}

// deltaFiltered applies the delta transform before measuring with inner.
type deltaFiltered struct {
	inner Compressor
	dist  int
}

func (d *deltaFiltered) Len(p []byte) (int, error) {
	bp := deltaBufPool.Get().(*[]byte)
	defer deltaBufPool.Put(bp)

	*bp = deltaEncode(*bp, p, d.dist)
	return d.inner.Len(*bp)
}

func (d *deltaFiltered) Config() Config {
	cfg := d.inner.Config()
	cfg.DeltaDistance = d.dist
	return cfg
}
