package workflow

// State is a step of the acquisition workflow
type State int

const (
	StateListing State = iota
	StateReady
	StateFetchingVersions
	StateVersionChosen
	StateDownloading
	StateBrowsing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateListing:
		return "listing"
	case StateReady:
		return "ready"
	case StateFetchingVersions:
		return "fetching versions"
	case StateVersionChosen:
		return "choosing version"
	case StateDownloading:
		return "downloading"
	case StateBrowsing:
		return "browsing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
