package market

import (
	"errors"
	"fmt"
)

// ErrIntegrity marks a data-integrity fault in a fetched candle window:
// duplicate or non-increasing timestamps, or a gap wide enough that we refuse
// to trade over it rather than interpolate. Callers abort the cycle on it.
var ErrIntegrity = errors.New("candle data integrity fault")

// MaxGapBars is how many missing bar-widths between consecutive candles we
// tolerate before flagging the series as suspicious. Exchanges drop the odd
// bar on thin volume; anything longer means the feed or our fetch window is
// broken.
const MaxGapBars = 4

// Validate checks a candle window for strictly increasing timestamps and
// bounded gaps. The timeframe is the nominal bar width of the series.
func Validate(window []Candle, timeframe string) error {
	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return err
	}

	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]

		d := cur.Time.Sub(prev.Time)
		if d <= 0 {
			return fmt.Errorf("%w: bar %s does not advance past %s",
				ErrIntegrity, cur.Time.UTC().Format("2006-01-02T15:04:05Z"),
				prev.Time.UTC().Format("2006-01-02T15:04:05Z"))
		}
		if d > MaxGapBars*tf {
			return fmt.Errorf("%w: %s gap before bar %s exceeds %d bar-widths",
				ErrIntegrity, d, cur.Time.UTC().Format("2006-01-02T15:04:05Z"), MaxGapBars)
		}
	}
	return nil
}
