package core

import "github.com/valter-silva-au/gantt/pkg/models"

// SnapshotStore persists project snapshots. It is defined here so that core
// does not import storage.
type SnapshotStore interface {
	Load() (models.Snapshot, error)
	Save(snap models.Snapshot) error
	Path() string
}

// StoreListener adapts a SnapshotStore into a SnapshotListener that saves
// every committed snapshot.
func StoreListener(s SnapshotStore) SnapshotListener {
	return SnapshotListenerFunc(s.Save)
}
