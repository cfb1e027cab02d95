package domain

// CollectionStatus tags the outcome of one connector call.
type CollectionStatus string

const (
	CollectionOK          CollectionStatus = "ok"
	CollectionEmpty       CollectionStatus = "empty"
	CollectionFetchFailed CollectionStatus = "fetch_failed"
)

// Collection is the tagged result of asking one connector for targets.
// Targets is non-empty only for CollectionOK; Err is set only for CollectionFetchFailed.
type Collection struct {
	Source  string
	Status  CollectionStatus
	Targets []FetchTarget
	Err     error
}

// NewCollection tags a connector result.
func NewCollection(source string, targets []FetchTarget, err error) Collection {
	switch {
	case err != nil:
		return Collection{Source: source, Status: CollectionFetchFailed, Err: err}
	case len(targets) == 0:
		return Collection{Source: source, Status: CollectionEmpty}
	default:
		return Collection{Source: source, Status: CollectionOK, Targets: targets}
	}
}
