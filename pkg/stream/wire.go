package stream

import (
	"encoding/base64"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// pricingData is the subset of the streamer's protobuf message the engine
// consumes. The schema is an external contract; field numbers mirror the
// live wire format and must not be renumbered.
type pricingData struct {
	ID            string   // 1
	Price         *float64 // 2, float; nil when the frame omits it
	Time          int64   // 3, sint64
	Currency      string  // 4
	Exchange      string  // 5
	QuoteType     int64   // 8
	MarketHours   int64   // 9
	ChangePercent float64 // 10, float
	DayVolume     int64   // 11, sint64
	DayHigh       float64 // 12, float
	DayLow        float64 // 13, float
	Change        float64 // 14, float
	PriceHint     int64   // 27, sint64
}

// decodeFrame decodes one base64-encoded protobuf frame from the streamer.
func decodeFrame(payload string) (*pricingData, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding stream frame base64: %w", err)
	}
	return decodePricingData(raw)
}

func decodePricingData(raw []byte) (*pricingData, error) {
	var pd pricingData
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, fmt.Errorf("decoding stream frame: %w", protowire.ParseError(n))
		}
		raw = raw[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return nil, fmt.Errorf("decoding stream frame: %w", protowire.ParseError(n))
			}
			raw = raw[n:]
			switch num {
			case 1:
				pd.ID = string(v)
			case 4:
				pd.Currency = string(v)
			case 5:
				pd.Exchange = string(v)
			}
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(raw)
			if n < 0 {
				return nil, fmt.Errorf("decoding stream frame: %w", protowire.ParseError(n))
			}
			raw = raw[n:]
			f := float64(math.Float32frombits(v))
			switch num {
			case 2:
				pd.Price = &f
			case 10:
				pd.ChangePercent = f
			case 12:
				pd.DayHigh = f
			case 13:
				pd.DayLow = f
			case 14:
				pd.Change = f
			}
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("decoding stream frame: %w", protowire.ParseError(n))
			}
			raw = raw[n:]
			switch num {
			case 3:
				pd.Time = protowire.DecodeZigZag(v)
			case 8:
				pd.QuoteType = int64(v)
			case 9:
				pd.MarketHours = int64(v)
			case 11:
				pd.DayVolume = protowire.DecodeZigZag(v)
			case 27:
				pd.PriceHint = protowire.DecodeZigZag(v)
			}
		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(raw)
			if n < 0 {
				return nil, fmt.Errorf("decoding stream frame: %w", protowire.ParseError(n))
			}
			raw = raw[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return nil, fmt.Errorf("decoding stream frame: %w", protowire.ParseError(n))
			}
			raw = raw[n:]
		}
	}
	if pd.ID == "" {
		return nil, fmt.Errorf("stream frame carries no symbol id")
	}
	return &pd, nil
}
