//go:build !linux

package remote

// Start returns a Remote that publishes nothing and never delivers an
// Event, since MPRIS is a Linux desktop-session concept. Matches
// media_keys.rs's own #[cfg(not(target_os = "linux"))] dummy channels.
func Start() (Remote, error) {
	return Noop(), nil
}
