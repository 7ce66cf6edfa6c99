// Package events handles event emission for inventory lifecycle changes
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"

	appctx "github.com/etcsc/warehouse/pkg/context"
	"github.com/etcsc/warehouse/pkg/kafka"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// Topic suffixes for lifecycle events
const (
	TopicUnitCreated      = "inventory.unit.created"
	TopicUnitsRelocated   = "inventory.units.relocated"
	TopicShipoutCompleted = "shipout.completed"
	TopicImportCompleted  = "rma.import.completed"
)

// Publisher delivers one lifecycle event to a topic. *kafka.Producer is the
// production implementation.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.LifecycleEvent) error
}

// Emitter publishes lifecycle events. A nil publisher disables emission, so
// callers never need to branch on whether Kafka is configured.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter. publisher may be nil.
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// emit is best-effort: failures are logged and never fail the write that
// triggered them.
func (e *Emitter) emit(ctx context.Context, topic string, event *kafka.LifecycleEvent) {
	if e.publisher == nil {
		return
	}

	event.Actor = appctx.GetUserID(ctx)

	if err := e.publisher.Publish(ctx, topic, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", event.EventType)
	}
}

// EmitUnitCreated publishes an inventory.unit.created event
func (e *Emitter) EmitUnitCreated(ctx context.Context, unit *models.InventoryUnitDetail) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitUnitCreated")
	defer span.End()

	data, err := json.Marshal(UnitCreatedPayload{
		SchemaVersion: SchemaVersion,
		SerialNum:     unit.SerialNum,
		RMANum:        unit.RMANum,
		TrackingNum:   unit.TrackingNum,
		ItemID:        unit.ItemID,
		Model:         unit.Model,
		Brand:         unit.Brand,
		Ownership:     unit.Ownership,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode unit created event")
		return
	}

	e.emit(ctx, TopicUnitCreated, &kafka.LifecycleEvent{
		EventType: TopicUnitCreated,
		Key:       unit.SerialNum,
		Data:      data,
	})
}

// EmitUnitsRelocated publishes an inventory.units.relocated event
func (e *Emitter) EmitUnitsRelocated(ctx context.Context, serialNumbers []string, location string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitUnitsRelocated")
	defer span.End()

	data, err := json.Marshal(UnitsRelocatedPayload{
		SchemaVersion: SchemaVersion,
		SerialNumbers: serialNumbers,
		Location:      location,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode relocation event")
		return
	}

	e.emit(ctx, TopicUnitsRelocated, &kafka.LifecycleEvent{
		EventType: TopicUnitsRelocated,
		Key:       strings.Join(serialNumbers, ","),
		Data:      data,
	})
}

// EmitShipoutCompleted publishes a shipout.completed event
func (e *Emitter) EmitShipoutCompleted(ctx context.Context, transactionID int64, serialNumbers []string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitShipoutCompleted")
	defer span.End()

	data, err := json.Marshal(ShipoutCompletedPayload{
		SchemaVersion: SchemaVersion,
		TransactionID: transactionID,
		SerialNumbers: serialNumbers,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode shipout event")
		return
	}

	e.emit(ctx, TopicShipoutCompleted, &kafka.LifecycleEvent{
		EventType: TopicShipoutCompleted,
		Key:       strconv.FormatInt(transactionID, 10),
		Data:      data,
	})
}

// EmitImportCompleted publishes an rma.import.completed event
func (e *Emitter) EmitImportCompleted(ctx context.Context, importID int64, result *models.RMAImportResult) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitImportCompleted")
	defer span.End()

	data, err := json.Marshal(ImportCompletedPayload{
		SchemaVersion: SchemaVersion,
		ImportID:      importID,
		AddedCount:    result.AddedCount,
		SkippedCount:  len(result.SkippedEntries),
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode import event")
		return
	}

	e.emit(ctx, TopicImportCompleted, &kafka.LifecycleEvent{
		EventType: TopicImportCompleted,
		Key:       strconv.FormatInt(importID, 10),
		Data:      data,
	})
}
