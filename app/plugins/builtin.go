package plugins

import (
	"github.com/kilianp07/lift/config"
	"github.com/kilianp07/lift/core/journal"
	"github.com/kilianp07/lift/core/records"
)

func init() {
	RegisterJournal("jsonl", func(cfg config.JournalConfig) (journal.Store, error) {
		return journal.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	})
	RegisterJournal("sqlite", func(cfg config.JournalConfig) (journal.Store, error) {
		return journal.NewSQLiteStore(cfg.Path)
	})

	RegisterRecordStore(config.StorageMemory, func(config.StoreConfig) (*Stores, error) {
		return &Stores{
			Requests: records.NewMemoryStore(records.Requests),
			Riders:   records.NewMemoryStore(records.Riders),
		}, nil
	})
	RegisterRecordStore(config.StorageSQLite, func(cfg config.StoreConfig) (*Stores, error) {
		db, err := records.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		reqs, err := records.NewSQLiteStore(db, records.Requests)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		riders, err := records.NewSQLiteStore(db, records.Riders)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Stores{Requests: reqs, Riders: riders, closers: []func() error{db.Close}}, nil
	})
}
