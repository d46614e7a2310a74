package wifi

import (
	"github.com/rs/zerolog"
)

// Supervisor owns the ConnectivityState. Transitions:
//
//	DISCONNECTED → CONNECTING → CONNECTED_STATION
//	                          → AP_CONFIG_MODE (timeout / join failure)
//	DISCONNECTED → AP_CONFIG_MODE (no SSID, or config failed to load)
//
// AP_CONFIG_MODE is terminal until an explicit reboot: the portal's address
// must stay stable while the operator is configuring, so there is no
// automatic retry back to station mode. Reconnection after a station link
// drop is likewise out of scope.
type Supervisor struct {
	mgr   Manager
	log   zerolog.Logger
	state State
}

// NewSupervisor creates a Supervisor in the DISCONNECTED state.
func NewSupervisor(mgr Manager, log zerolog.Logger) *Supervisor {
	return &Supervisor{mgr: mgr, log: log, state: StateDisconnected}
}

// State returns the current connectivity state.
func (s *Supervisor) State() State {
	return s.state
}

// Start runs the boot-time decision and returns the resulting state, which
// is either StateStation or StateAPConfig.
//
// configUsable is false when the persisted configuration was missing or
// corrupt; in that case the stored SSID is not trusted and the device goes
// straight to the portal.
func (s *Supervisor) Start(ssid, password string, configUsable bool) State {
	if !configUsable || ssid == "" {
		s.log.Info().Bool("config_usable", configUsable).Msg("unconfigured, starting config portal")
		return s.enterAPMode()
	}

	s.state = StateConnecting
	s.log.Info().Str("ssid", ssid).Dur("timeout", ConnectTimeout).Msg("connecting to station")

	if err := s.mgr.Connect(ssid, password, ConnectTimeout); err != nil {
		s.log.Warn().Err(err).Str("ssid", ssid).Msg("station connect failed, falling back to config portal")
		return s.enterAPMode()
	}

	s.state = StateStation
	s.log.Info().Str("ssid", ssid).Msg("connected in station mode")
	return s.state
}

func (s *Supervisor) enterAPMode() State {
	if err := s.mgr.StartAccessPoint(APSSID, APPassword); err != nil {
		// The portal is the only recovery path; without the AP the device
		// is unreachable, so surface loudly but stay in AP state — the
		// operator may still reach the portal over ethernet.
		s.log.Error().Err(err).Msg("failed to start access point")
	} else {
		s.log.Info().Str("ssid", APSSID).Str("gateway", APGateway).Msg("access point up")
	}
	s.state = StateAPConfig
	return s.state
}
