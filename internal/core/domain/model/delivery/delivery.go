package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery was not built by
	// NewDelivery or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")
)

// CodePrefix starts every delivery code.
const CodePrefix = "ENT"

// Delivery is the aggregate root of the authorization and fulfillment workflow.
//
// Invariants kept by the aggregate itself:
//   - status only moves along the transition graph of Status
//   - every checkpoint stores who performed it, when, and the notes given
//   - line items are fixed once the delivery is READY
//   - deductions are recorded exactly once, at READY
//   - reception data exists only on DELIVERED deliveries
//
// Segregation of duties and stock availability are checked by domain services
// before a transition method is called.
type Delivery struct {
	id        kernel.UUID
	code      string
	requestID kernel.UUID
	status    Status

	created            Step
	authorization      *Step
	isPartialAuth      bool
	authorizedQuantity int
	warehouse          *Step
	preparation        *Step
	ready              *Step
	dispatch           *Step
	reception          *Reception
	cancellation       *Step

	isPartial  bool
	details    []Detail
	deductions []Deduction

	version         int
	originalVersion int
	updatedAt       time.Time

	events        []Event
	isConstructed bool
}

// State is the full persisted shape of a Delivery, used by repositories.
type State struct {
	ID                 kernel.UUID
	Code               string
	RequestID          kernel.UUID
	Status             Status
	Created            Step
	Authorization      *Step
	IsPartialAuth      bool
	AuthorizedQuantity int
	Warehouse          *Step
	Preparation        *Step
	Ready              *Step
	Dispatch           *Step
	Reception          *Reception
	Cancellation       *Step
	IsPartial          bool
	Details            []Detail
	Deductions         []Deduction
	Version            int
	UpdatedAt          time.Time
}

// NewDelivery creates a delivery in PENDING_AUTHORIZATION together with its
// creation history record. Each item may appear on a single line.
func NewDelivery(
	id, requestID, createdBy kernel.UUID,
	details []Detail,
	notes string,
	at time.Time,
) (*Delivery, HistoryRecord, error) {
	d := &Delivery{
		status:        PendingAuthorization,
		created:       *newStep(createdBy, at, notes),
		version:       1,
		updatedAt:     at.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setRequestID(requestID),
		createdBy.Validate(),
		d.setDetails(details),
	); err != nil {
		return nil, HistoryRecord{}, err
	}

	d.code = NewCode(id, at)
	record := newHistoryRecord(d.id, nil, PendingAuthorization, createdBy, notes, at)
	d.raiseTransition(Create, record)

	return d, record, nil
}

// NewCode renders ENT-YYYYMMDD-XXXXXX from the creation date and the id.
func NewCode(id kernel.UUID, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", CodePrefix, at.UTC().Format("20060102"), id.Short())
}

// RestoreDelivery rebuilds a persisted delivery and checks that the stored
// checkpoints agree with its status.
func RestoreDelivery(s State) (*Delivery, error) {
	d := &Delivery{
		code:               s.Code,
		status:             s.Status,
		created:            s.Created,
		authorization:      s.Authorization.clone(),
		isPartialAuth:      s.IsPartialAuth,
		authorizedQuantity: s.AuthorizedQuantity,
		warehouse:          s.Warehouse.clone(),
		preparation:        s.Preparation.clone(),
		ready:              s.Ready.clone(),
		dispatch:           s.Dispatch.clone(),
		cancellation:       s.Cancellation.clone(),
		isPartial:          s.IsPartial,
		deductions:         append([]Deduction(nil), s.Deductions...),
		version:            s.Version,
		originalVersion:    s.Version,
		updatedAt:          s.UpdatedAt,
		isConstructed:      true,
	}
	if s.Reception != nil {
		r := *s.Reception
		d.reception = &r
	}

	var codeErr error
	if !strings.HasPrefix(s.Code, CodePrefix+"-") {
		codeErr = errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("%q does not start with %s-", s.Code, CodePrefix))
	}

	if err := errors.Join(
		d.setID(s.ID),
		d.setRequestID(s.RequestID),
		s.Status.Validate(),
		s.Created.By.Validate(),
		codeErr,
		d.setDetails(s.Details),
	); err != nil {
		return nil, err
	}

	if err := d.validateCheckpoints(); err != nil {
		return nil, err
	}

	return d, nil
}

// validateCheckpoints checks that a status carries the checkpoints of every
// status before it.
func (d *Delivery) validateCheckpoints() error {
	missing := func(name string) error {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s requires %s", d.status, name),
		)
	}

	var problems []error
	if d.status.Reached(Authorized) && d.authorization == nil {
		problems = append(problems, missing("authorization"))
	}
	if d.status.Reached(ReceivedWarehouse) && d.warehouse == nil {
		problems = append(problems, missing("warehouse reception"))
	}
	if d.status.Reached(InPreparation) && d.preparation == nil {
		problems = append(problems, missing("preparation"))
	}
	if d.status.Reached(Ready) && (d.ready == nil || len(d.deductions) == 0) {
		problems = append(problems, missing("ready checkpoint and deductions"))
	}
	if d.status == Delivered && (d.dispatch == nil || d.reception == nil) {
		problems = append(problems, missing("dispatch and reception"))
	}
	if d.status != Delivered && d.reception != nil {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"reception", fmt.Errorf("reception is only allowed on %s", Delivered)))
	}
	if d.status == Cancelled && d.cancellation == nil {
		problems = append(problems, missing("cancellation"))
	}
	if d.version <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"version", fmt.Errorf("%d is not greater than 0", d.version)))
	}

	return errors.Join(problems...)
}

// Validate ensures the delivery was built by a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// IsEqual compares deliveries by id.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Delivery) ID() kernel.UUID {
	return d.id
}

func (d *Delivery) Code() string {
	return d.code
}

func (d *Delivery) RequestID() kernel.UUID {
	return d.requestID
}

func (d *Delivery) Status() Status {
	return d.status
}

// CreatedBy returns the warehouse user who registered the delivery.
func (d *Delivery) CreatedBy() kernel.UUID {
	return d.created.By
}

func (d *Delivery) CreatedAt() time.Time {
	return d.created.At
}

// AuthorizedBy returns nil until the delivery is authorized.
func (d *Delivery) AuthorizedBy() *kernel.UUID {
	return d.authorization.byID()
}

// ReceivedInWarehouseBy returns the warehouse user who received the goods.
func (d *Delivery) ReceivedInWarehouseBy() *kernel.UUID {
	return d.warehouse.byID()
}

// PreparedBy returns the warehouse user who started preparation.
func (d *Delivery) PreparedBy() *kernel.UUID {
	return d.preparation.byID()
}

// DeliveredBy returns the dispatcher who handed the goods over.
func (d *Delivery) DeliveredBy() *kernel.UUID {
	return d.dispatch.byID()
}

func (d *Delivery) IsPartialAuth() bool {
	return d.isPartialAuth
}

// AuthorizedQuantity is the total number of units approved by the authorizer.
func (d *Delivery) AuthorizedQuantity() int {
	return d.authorizedQuantity
}

func (d *Delivery) IsPartial() bool {
	return d.isPartial
}

// SetPartial records whether this cycle leaves part of the request pending.
// It is only meaningful before the delivery is READY.
func (d *Delivery) SetPartial(partial bool) {
	if !d.status.Reached(Ready) {
		d.isPartial = partial
	}
}

// Reception returns nil unless the delivery is DELIVERED.
func (d *Delivery) Reception() *Reception {
	if d.reception == nil {
		return nil
	}
	r := *d.reception
	return &r
}

// Details returns a copy of the line items.
func (d *Delivery) Details() []Detail {
	return append([]Detail(nil), d.details...)
}

// Deductions returns the stock allocations taken at READY.
func (d *Delivery) Deductions() []Deduction {
	return append([]Deduction(nil), d.deductions...)
}

// Quantities sums line quantities per item.
func (d *Delivery) Quantities() map[kernel.ItemRef]int {
	return QuantitiesByItem(d.details)
}

// Version is the row version once the pending changes are written: 1 for a
// delivery that was never stored, OriginalVersion()+1 after any transition
// of a stored one.
func (d *Delivery) Version() int {
	return d.version
}

// OriginalVersion is the version the delivery was loaded with, 0 for a new one.
func (d *Delivery) OriginalVersion() int {
	return d.originalVersion
}

// UpdatedAt is the time of the last transition.
func (d *Delivery) UpdatedAt() time.Time {
	return d.updatedAt
}

// State exports the persisted shape.
func (d *Delivery) State() State {
	s := State{
		ID:                 d.id,
		Code:               d.code,
		RequestID:          d.requestID,
		Status:             d.status,
		Created:            d.created,
		Authorization:      d.authorization.clone(),
		IsPartialAuth:      d.isPartialAuth,
		AuthorizedQuantity: d.authorizedQuantity,
		Warehouse:          d.warehouse.clone(),
		Preparation:        d.preparation.clone(),
		Ready:              d.ready.clone(),
		Dispatch:           d.dispatch.clone(),
		Reception:          d.Reception(),
		Cancellation:       d.cancellation.clone(),
		IsPartial:          d.isPartial,
		Details:            d.Details(),
		Deductions:         d.Deductions(),
		Version:            d.version,
		UpdatedAt:          d.updatedAt,
	}
	return s
}

// CanPerform checks only the transition graph. Identity and capability rules
// belong to the duty segregation guard.
func (d *Delivery) CanPerform(action Action) error {
	return d.status.CanPerform(action)
}

// Authorize moves PENDING_AUTHORIZATION to AUTHORIZED. authorized optionally
// lowers line quantities per item; every key must be a line of the delivery
// and every value must be in [1, requested].
func (d *Delivery) Authorize(
	by kernel.UUID,
	notes string,
	authorized map[kernel.ItemRef]int,
	at time.Time,
) (HistoryRecord, error) {
	next, err := d.status.Next(Authorize)
	if err != nil {
		return HistoryRecord{}, err
	}
	if err = by.Validate(); err != nil {
		return HistoryRecord{}, err
	}

	details := d.Details()
	seen := make(map[kernel.ItemRef]bool, len(authorized))
	var problems []error
	for i, detail := range details {
		qty, ok := authorized[detail.Item()]
		if !ok {
			continue
		}
		seen[detail.Item()] = true
		updated, qtyErr := detail.withQuantity(qty)
		if qtyErr != nil {
			problems = append(problems, qtyErr)
			continue
		}
		details[i] = updated
	}
	for item := range authorized {
		if !seen[item] {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
				"authorized item", fmt.Errorf("%s is not a line of delivery %s", item, d.code)))
		}
	}
	if err = errors.Join(problems...); err != nil {
		return HistoryRecord{}, err
	}

	total := 0
	partial := false
	for _, detail := range details {
		total += detail.Quantity()
		partial = partial || detail.IsReduced()
	}

	d.details = details
	d.isPartialAuth = partial
	d.authorizedQuantity = total
	d.authorization = newStep(by, at, notes)

	return d.moveTo(Authorize, next, by, notes, at), nil
}

// ReceiveInWarehouse moves AUTHORIZED to RECEIVED_WAREHOUSE.
func (d *Delivery) ReceiveInWarehouse(by kernel.UUID, notes string, at time.Time) (HistoryRecord, error) {
	next, err := d.status.Next(ReceiveInWarehouse)
	if err != nil {
		return HistoryRecord{}, err
	}
	if err = by.Validate(); err != nil {
		return HistoryRecord{}, err
	}

	d.warehouse = newStep(by, at, notes)
	return d.moveTo(ReceiveInWarehouse, next, by, notes, at), nil
}

// StartPreparation moves RECEIVED_WAREHOUSE to IN_PREPARATION.
func (d *Delivery) StartPreparation(by kernel.UUID, notes string, at time.Time) (HistoryRecord, error) {
	next, err := d.status.Next(StartPreparation)
	if err != nil {
		return HistoryRecord{}, err
	}
	if err = by.Validate(); err != nil {
		return HistoryRecord{}, err
	}

	d.preparation = newStep(by, at, notes)
	return d.moveTo(StartPreparation, next, by, notes, at), nil
}

// MarkReady moves IN_PREPARATION to READY and records the stock allocations
// that were deducted for the line items.
func (d *Delivery) MarkReady(by kernel.UUID, notes string, deductions []Deduction, at time.Time) (HistoryRecord, error) {
	next, err := d.status.Next(MarkReady)
	if err != nil {
		return HistoryRecord{}, err
	}
	if err = by.Validate(); err != nil {
		return HistoryRecord{}, err
	}
	if len(deductions) == 0 {
		return HistoryRecord{}, errs.NewValueIsRequiredError("deductions")
	}
	for _, ded := range deductions {
		if err = errors.Join(ded.lotID.Validate(), ded.productID.Validate()); err != nil {
			return HistoryRecord{}, err
		}
	}

	d.deductions = append([]Deduction(nil), deductions...)
	d.ready = newStep(by, at, notes)
	return d.moveTo(MarkReady, next, by, notes, at), nil
}

// ConfirmDelivery moves READY to DELIVERED and stores who received the goods.
func (d *Delivery) ConfirmDelivery(by kernel.UUID, reception Reception, notes string, at time.Time) (HistoryRecord, error) {
	next, err := d.status.Next(ConfirmDelivery)
	if err != nil {
		return HistoryRecord{}, err
	}
	if err = errors.Join(by.Validate(), reception.Validate()); err != nil {
		return HistoryRecord{}, err
	}

	d.reception = &reception
	d.dispatch = newStep(by, at, notes)
	return d.moveTo(ConfirmDelivery, next, by, notes, at), nil
}

// Cancel moves any non-terminal delivery to CANCELLED. When the delivery was
// READY the recorded deductions are returned so the caller can put the stock
// back; for earlier statuses nothing was deducted and the slice is empty.
func (d *Delivery) Cancel(by kernel.UUID, reason string, at time.Time) (HistoryRecord, []Deduction, error) {
	previous := d.status
	next, err := d.status.Next(Cancel)
	if err != nil {
		return HistoryRecord{}, nil, err
	}

	var reasonErr error
	if strings.TrimSpace(reason) == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}
	if err = errors.Join(by.Validate(), reasonErr); err != nil {
		return HistoryRecord{}, nil, err
	}

	var toReverse []Deduction
	if previous == Ready {
		toReverse = d.Deductions()
	}

	d.cancellation = newStep(by, at, reason)
	return d.moveTo(Cancel, next, by, reason, at), toReverse, nil
}

// RecordEvent queues an event to be written with the next persisted change.
func (d *Delivery) RecordEvent(e Event) {
	d.events = append(d.events, e)
}

// PullEvents returns and clears the queued events.
func (d *Delivery) PullEvents() []Event {
	events := d.events
	d.events = nil
	return events
}

func (d *Delivery) moveTo(action Action, next Status, by kernel.UUID, notes string, at time.Time) HistoryRecord {
	from := d.status
	d.status = next
	d.version = d.originalVersion + 1
	d.updatedAt = at.UTC()

	record := newHistoryRecord(d.id, &from, next, by, notes, at)
	d.raiseTransition(action, record)
	return record
}

func (d *Delivery) raiseTransition(action Action, record HistoryRecord) {
	e := TransitionRecorded{
		HistoryID:  record.ID().String(),
		DeliveryID: d.id.String(),
		Code:       d.code,
		RequestID:  d.requestID.String(),
		Action:     action.String(),
		To:         record.To().String(),
		UserID:     record.UserID().String(),
		Notes:      record.Notes(),
		At:         record.CreatedAt(),
	}
	if from := record.From(); from != nil {
		e.From = from.String()
	}
	d.RecordEvent(e)
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setRequestID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("requestId", err)
	}
	d.requestID = id
	return nil
}

func (d *Delivery) setDetails(details []Detail) error {
	if len(details) == 0 {
		return errs.NewValueIsRequiredError("deliveryDetails")
	}

	seen := make(map[kernel.ItemRef]struct{}, len(details))
	for _, detail := range details {
		if err := detail.id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("deliveryDetails", errors.New("line items must be created via NewDetail"))
		}
		if _, dup := seen[detail.item]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"deliveryDetails", fmt.Errorf("%s appears on more than one line", detail.item))
		}
		seen[detail.item] = struct{}{}
	}

	d.details = append([]Detail(nil), details...)
	return nil
}
