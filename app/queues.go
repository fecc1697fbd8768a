package app

import (
	"fmt"

	"github.com/kilianp07/lift/app/plugins"
	"github.com/kilianp07/lift/config"
	"github.com/kilianp07/lift/core/logger"
	"github.com/kilianp07/lift/core/queue"
	"github.com/kilianp07/lift/core/records"
	"github.com/kilianp07/lift/infra/recordclient"
)

// Queues are the pending and aboard queues of the car.
type Queues struct {
	Pending queue.Queue
	Aboard  queue.Queue
	// Owned is set when the queues opened a backend of their own.
	Owned *plugins.Stores
}

// Close releases an owned backend.
func (q Queues) Close() error {
	if q.Owned == nil {
		return nil
	}
	return q.Owned.Close()
}

// NewQueues builds the car queues for cfg.Car.Storage. A sqlite car shares
// served stores when they are sqlite too, so the record API shows the live
// queues.
func NewQueues(cfg *config.Config, served *plugins.Stores, log logger.Logger) (Queues, error) {
	switch cfg.Car.Storage {
	case config.StorageMemory:
		return Queues{
			Pending: queue.NewMemory(records.Requests.Prefix()),
			Aboard:  queue.NewMemory(records.Riders.Prefix()),
		}, nil
	case config.StorageSQLite:
		if served != nil && cfg.Store.Backend == config.StorageSQLite {
			return Queues{Pending: queue.NewRecords(served.Requests), Aboard: queue.NewRecords(served.Riders)}, nil
		}
		stores, err := plugins.NewRecordStores(config.StoreConfig{Backend: config.StorageSQLite, Path: cfg.Store.Path})
		if err != nil {
			return Queues{}, err
		}
		return Queues{Pending: queue.NewRecords(stores.Requests), Aboard: queue.NewRecords(stores.Riders), Owned: stores}, nil
	case config.StorageRemote:
		client, err := recordclient.New(cfg.Remote, log)
		if err != nil {
			return Queues{}, err
		}
		return Queues{
			Pending: queue.NewRecords(client.Store(records.Requests)),
			Aboard:  queue.NewRecords(client.Store(records.Riders)),
		}, nil
	}
	return Queues{}, fmt.Errorf("unknown car storage %q", cfg.Car.Storage)
}
