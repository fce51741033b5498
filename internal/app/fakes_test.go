package app_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/neomorfeo/habitta/internal/domain"
)

// --- In-memory store ---

// memData is the whole store state. Transactions work on a clone and swap it
// in on commit.
type memData struct {
	users         map[string]domain.User
	properties    map[string]domain.Property
	apps          map[string]domain.Application
	legalDocs     map[string][]domain.LegalDocument
	payments      []domain.Payment
	reviews       []domain.Review
	notifications []domain.Notification
}

func (d *memData) clone() *memData {
	c := &memData{
		users:         make(map[string]domain.User, len(d.users)),
		properties:    make(map[string]domain.Property, len(d.properties)),
		apps:          make(map[string]domain.Application, len(d.apps)),
		legalDocs:     make(map[string][]domain.LegalDocument, len(d.legalDocs)),
		payments:      append([]domain.Payment(nil), d.payments...),
		reviews:       append([]domain.Review(nil), d.reviews...),
		notifications: append([]domain.Notification(nil), d.notifications...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.properties {
		c.properties[k] = v
	}
	for k, v := range d.apps {
		c.apps[k] = v
	}
	for k, v := range d.legalDocs {
		c.legalDocs[k] = append([]domain.LegalDocument(nil), v...)
	}
	return c
}

func (d *memData) joined(a domain.Application) domain.Application {
	if u, ok := d.users[a.RenterID]; ok {
		a.Renter = domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
	}
	if p, ok := d.properties[a.PropertyID]; ok {
		a.Property = p.Summary()
	}
	return a
}

type memStore struct {
	data *memData
	inTx bool

	// fail makes the named operation return the error.
	fail map[string]error
	// beforeUpdate runs inside Applications().Update before the version check.
	beforeUpdate func(d *memData)
}

var _ domain.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		data: &memData{
			users:      map[string]domain.User{},
			properties: map[string]domain.Property{},
			apps:       map[string]domain.Application{},
			legalDocs:  map[string][]domain.LegalDocument{},
		},
		fail: map[string]error{},
	}
}

func (s *memStore) Applications() domain.ApplicationRepository { return memApps{s} }
func (s *memStore) Properties() domain.PropertyRepository      { return memProperties{s} }
func (s *memStore) Payments() domain.PaymentRepository         { return memPayments{s} }
func (s *memStore) Reviews() domain.ReviewRepository           { return memReviews{s} }
func (s *memStore) Users() domain.UserRepository               { return memUsers{s} }
func (s *memStore) Notifications() domain.NotificationRepository {
	return memNotifications{s}
}

func (s *memStore) InTx(_ context.Context, fn func(tx domain.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx := &memStore{
		data:         s.data.clone(),
		inTx:         true,
		fail:         s.fail,
		beforeUpdate: s.beforeUpdate,
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *memStore) injected(op string) error {
	return s.fail[op]
}

// seeding helpers

func (s *memStore) addUser(u domain.User) {
	s.data.users[u.ID] = u
}

func (s *memStore) addProperty(p domain.Property) {
	s.data.properties[p.ID] = p
}

func (s *memStore) addLegalDocument(doc domain.LegalDocument) {
	s.data.legalDocs[doc.ApplicationID] = append(s.data.legalDocs[doc.ApplicationID], doc)
}

func (s *memStore) property(id string) domain.Property {
	return s.data.properties[id]
}

func (s *memStore) rawApplication(id string) (domain.Application, bool) {
	a, ok := s.data.apps[id]
	return a, ok
}

type memApps struct{ s *memStore }

func (r memApps) Create(_ context.Context, app domain.Application) error {
	for _, existing := range r.s.data.apps {
		if existing.RenterID == app.RenterID && existing.PropertyID == app.PropertyID {
			return &domain.DuplicateApplicationError{RenterID: app.RenterID, PropertyID: app.PropertyID}
		}
	}
	r.s.data.apps[app.ID] = app
	return nil
}

func (r memApps) GetByID(_ context.Context, id string) (domain.Application, error) {
	a, ok := r.s.data.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrApplicationNotFound
	}
	return r.s.data.joined(a), nil
}

func (r memApps) FindByRenterAndProperty(_ context.Context, renterID, propertyID string) (domain.Application, error) {
	for _, a := range r.s.data.apps {
		if a.RenterID == renterID && a.PropertyID == propertyID {
			return r.s.data.joined(a), nil
		}
	}
	return domain.Application{}, domain.ErrApplicationNotFound
}

func (r memApps) List(_ context.Context, f domain.ListFilter) ([]domain.Application, error) {
	out := make([]domain.Application, 0)
	for _, a := range r.s.data.apps {
		a = r.s.data.joined(a)
		if f.RenterID != "" && a.RenterID != f.RenterID {
			continue
		}
		if f.PropertyID != "" && a.PropertyID != f.PropertyID {
			continue
		}
		if f.OwnerID != "" && a.Property.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memApps) Update(_ context.Context, app domain.Application) error {
	if err := r.s.injected("applications.Update"); err != nil {
		return err
	}
	if r.s.beforeUpdate != nil {
		r.s.beforeUpdate(r.s.data)
	}
	stored, ok := r.s.data.apps[app.ID]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	if stored.Version != app.Version {
		return domain.ErrStaleApplication
	}
	app.Version++
	r.s.data.apps[app.ID] = app
	return nil
}

func (r memApps) Delete(_ context.Context, id string) error {
	if _, ok := r.s.data.apps[id]; !ok {
		return domain.ErrApplicationNotFound
	}
	delete(r.s.data.legalDocs, id)
	delete(r.s.data.apps, id)
	return nil
}

type memProperties struct{ s *memStore }

func (r memProperties) GetByID(_ context.Context, id string) (domain.Property, error) {
	p, ok := r.s.data.properties[id]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (r memProperties) SetPublicationStatus(_ context.Context, id string, status domain.PublicationStatus) error {
	if err := r.s.injected("properties.SetPublicationStatus"); err != nil {
		return err
	}
	p, ok := r.s.data.properties[id]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	p.PublicationStatus = status
	r.s.data.properties[id] = p
	return nil
}

type memPayments struct{ s *memStore }

func (r memPayments) Create(_ context.Context, p domain.Payment) error {
	if err := r.s.injected("payments.Create"); err != nil {
		return err
	}
	r.s.data.payments = append(r.s.data.payments, p)
	return nil
}

func (r memPayments) ListByRelated(_ context.Context, relatedType, relatedID string) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.s.data.payments {
		if p.RelatedType == relatedType && p.RelatedID == relatedID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memReviews struct{ s *memStore }

func (r memReviews) CreateMany(_ context.Context, reviews []domain.Review) error {
	if err := r.s.injected("reviews.CreateMany"); err != nil {
		return err
	}
	r.s.data.reviews = append(r.s.data.reviews, reviews...)
	return nil
}

func (r memReviews) ListByApplication(_ context.Context, applicationID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range r.s.data.reviews {
		if rv.ApplicationID == applicationID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r memReviews) ListByReceiver(_ context.Context, userID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range r.s.data.reviews {
		if rv.ReceiverID == userID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type memUsers struct{ s *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := r.s.data.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

type memNotifications struct{ s *memStore }

func (r memNotifications) Create(_ context.Context, n domain.Notification) error {
	r.s.data.notifications = append(r.s.data.notifications, n)
	return nil
}

func (r memNotifications) ListByRecipient(_ context.Context, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	for i := len(r.s.data.notifications) - 1; i >= 0; i-- {
		if n := r.s.data.notifications[i]; n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

// --- Notifier ---

type recordingNotifier struct {
	sent []domain.Notification
	err  error
	// onNotify runs before each send.
	onNotify func(domain.Notification)
}

func (n *recordingNotifier) Notify(_ context.Context, note domain.Notification) error {
	if n.onNotify != nil {
		n.onNotify(note)
	}
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, note)
	return nil
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	out := make([]domain.NotificationKind, 0, len(n.sent))
	for _, note := range n.sent {
		out = append(out, note.Kind)
	}
	return out
}

// --- Deterministic ids and clock ---

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

var fixedNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
