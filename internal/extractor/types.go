package extractor

import (
	"github.com/screentel/screentel/internal/classifier"
)

// SignalStrength holds the signed signal metrics as transcribed. Values keep
// whatever sign the text carried; a malformed positive RSRP is accepted
// verbatim.
type SignalStrength struct {
	RSRP string `json:"rsrp,omitempty"`
	RSRQ string `json:"rsrq,omitempty"`
	SINR string `json:"sinr,omitempty"`
}

// Empty reports whether no metric was extracted.
func (s SignalStrength) Empty() bool {
	return s.RSRP == "" && s.RSRQ == "" && s.SINR == ""
}

// NetworkInfo aggregates the network-level fields. Absent fields are omitted
// from JSON output; absence is not an error.
type NetworkInfo struct {
	Operator       string          `json:"operator,omitempty"`
	NetworkType    string          `json:"network_type,omitempty"`
	Location       string          `json:"location,omitempty"`
	SignalStrength *SignalStrength `json:"signal_strength,omitempty"`
}

// SpeedTest aggregates the speed-test figures and the visually determined
// carrier selection.
type SpeedTest struct {
	Ping           string                    `json:"ping,omitempty"`
	Download       string                    `json:"download,omitempty"`
	Upload         string                    `json:"upload,omitempty"`
	ActiveOperator string                    `json:"active_operator,omitempty"`
	CarrierStates  []classifier.CarrierState `json:"carrier_states,omitempty"`
}

// StructuredData is the extractor's merged output for one screenshot.
type StructuredData struct {
	NetworkInfo NetworkInfo `json:"network_info"`
	SpeedTest   SpeedTest   `json:"speed_test"`
}

// mergeNetworkInfo overlays enhancement onto base: enhancement fields
// overwrite only when they are defined (non-empty); absent enhancement
// fields never clear base values.
func mergeNetworkInfo(base, enh NetworkInfo) NetworkInfo {
	if enh.Operator != "" {
		base.Operator = enh.Operator
	}
	if enh.NetworkType != "" {
		base.NetworkType = enh.NetworkType
	}
	if enh.Location != "" {
		base.Location = enh.Location
	}
	if enh.SignalStrength != nil {
		merged := SignalStrength{}
		if base.SignalStrength != nil {
			merged = *base.SignalStrength
		}
		if enh.SignalStrength.RSRP != "" {
			merged.RSRP = enh.SignalStrength.RSRP
		}
		if enh.SignalStrength.RSRQ != "" {
			merged.RSRQ = enh.SignalStrength.RSRQ
		}
		if enh.SignalStrength.SINR != "" {
			merged.SINR = enh.SignalStrength.SINR
		}
		if !merged.Empty() {
			base.SignalStrength = &merged
		}
	}
	return base
}

// mergeSpeedTest overlays enhancement onto base with the same precedence
// rules as mergeNetworkInfo. Carrier states are replaced wholesale when the
// enhancement carries any.
func mergeSpeedTest(base, enh SpeedTest) SpeedTest {
	if enh.Ping != "" {
		base.Ping = enh.Ping
	}
	if enh.Download != "" {
		base.Download = enh.Download
	}
	if enh.Upload != "" {
		base.Upload = enh.Upload
	}
	if enh.ActiveOperator != "" {
		base.ActiveOperator = enh.ActiveOperator
	}
	if len(enh.CarrierStates) > 0 {
		base.CarrierStates = enh.CarrierStates
	}
	return base
}
