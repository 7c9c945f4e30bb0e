package evidence

import "fmt"

const (
	kib = 1024
	mib = 1024 * kib
)

// FormatSize renders a byte count for display. Unknown and zero sizes
// render as "-".
func FormatSize(size *int64) string {
	if size == nil || *size == 0 {
		return "-"
	}
	n := *size
	switch {
	case n < kib:
		return fmt.Sprintf("%d B", n)
	case n < mib:
		return fmt.Sprintf("%.1f KB", float64(n)/kib)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	}
}
