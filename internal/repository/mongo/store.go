// Package mongo implements repository.Store on MongoDB. Money-moving
// operations run in multi-document session transactions with snapshot read
// concern; every document such a transaction reads is also written by it,
// so a concurrent change surfaces as a WriteConflict at write or commit time.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/baharkarakas/wallet-ops/internal/models"
	repo "github.com/baharkarakas/wallet-ops/internal/repository"
)

// Collection name constants.
const (
	colAccounts      = "accounts"
	colTransactions  = "transactions"
	colInvoices      = "invoices"
	colNotifications = "notifications"
	colAuditLogs     = "admin_audit_logs"
	colAdmins        = "admin_users"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// Migrate creates the indexes the store relies on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colAccounts: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "account_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colTransactions: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{
				Keys:    bson.D{{Key: "original_tx_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("one_refund_ticket").SetPartialFilterExpression(bson.M{"type": string(models.TxnRefundTicket)}),
			},
			{
				Keys:    bson.D{{Key: "original_tx_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("one_invoice_refund").SetPartialFilterExpression(bson.M{"type": string(models.TxnRefund)}),
			},
		},
		colInvoices: {
			{Keys: bson.D{{Key: "merchant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colNotifications: {
			{Keys: bson.D{{Key: "merchant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for col, idx := range indexes {
		if _, err := s.col(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// ----------------- Transactions -----------------

const (
	labelTransient     = "TransientTransactionError"
	labelUnknownCommit = "UnknownTransactionCommitResult"
	commitRetries      = 3
)

func hasLabel(err error, label string) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorLabel(label)
}

func txnOptions() *options.TransactionOptionsBuilder {
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
}

// RunInTx runs fn once in a session transaction. Transient transaction
// errors (write conflicts, elections) are reported as repository.ErrTxConflict
// so the caller's bounded retry re-runs fn from scratch.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	if err := sess.StartTransaction(txnOptions()); err != nil {
		return err
	}
	sctx := mongo.NewSessionContext(ctx, sess)
	if err := fn(sctx, &mongoTx{s: s}); err != nil {
		_ = sess.AbortTransaction(context.WithoutCancel(ctx))
		if hasLabel(err, labelTransient) {
			return repo.ErrTxConflict
		}
		return err
	}
	return s.commit(sctx, sess)
}

func (s *Store) commit(ctx context.Context, sess *mongo.Session) error {
	var err error
	for i := 0; i < commitRetries; i++ {
		err = sess.CommitTransaction(ctx)
		if err == nil {
			return nil
		}
		if !hasLabel(err, labelUnknownCommit) {
			break
		}
	}
	if hasLabel(err, labelTransient) {
		return repo.ErrTxConflict
	}
	return err
}

// CommitBatch applies queued writes in a transaction that performs no reads,
// which is the closest document-store equivalent of an atomic write batch.
func (s *Store) CommitBatch(ctx context.Context, fn func(b repo.Batch)) error {
	b := &mongoBatch{}
	fn(b)
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return nil
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sctx context.Context) (any, error) {
		for _, op := range b.ops {
			if err := op(sctx, s); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}, txnOptions())
	return err
}

type mongoBatch struct {
	ops []func(ctx context.Context, s *Store) error
	err error
}

func (b *mongoBatch) InsertNotification(n models.Notification) {
	if err := n.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	b.ops = append(b.ops, func(ctx context.Context, s *Store) error {
		_, err := s.col(colNotifications).InsertOne(ctx, toNotificationDoc(n))
		return err
	})
}

func (b *mongoBatch) InsertAuditLog(l models.AuditLog) {
	if err := l.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	b.ops = append(b.ops, func(ctx context.Context, s *Store) error {
		return s.insertAuditLog(ctx, l)
	})
}

func (b *mongoBatch) SetPinHash(userID, hash string) {
	b.ops = append(b.ops, func(ctx context.Context, s *Store) error {
		res, err := s.col(colAccounts).UpdateOne(ctx,
			bson.M{"_id": accountID(models.UserRef(userID))},
			bson.M{"$set": bson.M{"pin_hash": hash}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
		}
		return nil
	})
}

// ----------------- Tx -----------------

type mongoTx struct{ s *Store }

func (t *mongoTx) GetAccount(ctx context.Context, ref models.AccountRef) (models.Account, error) {
	return t.s.GetAccount(ctx, ref)
}

func (t *mongoTx) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return t.s.GetTransaction(ctx, id)
}

func (t *mongoTx) GetInvoice(ctx context.Context, id string) (models.Invoice, error) {
	return t.s.GetInvoice(ctx, id)
}

func (t *mongoTx) IncrementBalance(ctx context.Context, ref models.AccountRef, delta int64) error {
	filter := bson.M{"_id": accountID(ref)}
	if delta < 0 {
		filter["balance"] = bson.M{"$gte": -delta}
	}
	res, err := t.s.col(colAccounts).UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"balance": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if delta < 0 {
			return fmt.Errorf("%w: account %s", models.ErrInsufficientFunds, ref)
		}
		return fmt.Errorf("%w: account %s", models.ErrNotFound, ref)
	}
	return nil
}

func (t *mongoTx) InsertTransaction(ctx context.Context, tr models.Transaction) error {
	if err := tr.Validate(); err != nil {
		return err
	}
	_, err := t.s.col(colTransactions).InsertOne(ctx, toTransactionDoc(tr))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrAlreadyProcessed, err)
	}
	return err
}

func (t *mongoTx) MarkTransactionRefunded(ctx context.Context, id string, at time.Time) error {
	res, err := t.s.col(colTransactions).UpdateOne(ctx,
		bson.M{"_id": id, "refunded_by_admin": false},
		bson.M{"$set": bson.M{"refunded_by_admin": true, "refunded_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: transaction %s already refunded", models.ErrAlreadyProcessed, id)
	}
	return nil
}

func (t *mongoTx) InsertInvoice(ctx context.Context, inv models.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	_, err := t.s.col(colInvoices).InsertOne(ctx, toInvoiceDoc(inv))
	return err
}

func (t *mongoTx) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	res, err := t.s.col(colInvoices).ReplaceOne(ctx, bson.M{"_id": inv.ID}, toInvoiceDoc(inv))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: invoice %s", models.ErrNotFound, inv.ID)
	}
	return nil
}

func (t *mongoTx) SetMerchantPlan(ctx context.Context, merchantID string, plan models.Plan, at time.Time) error {
	res, err := t.s.col(colAccounts).UpdateOne(ctx,
		bson.M{"_id": accountID(models.MerchantRef(merchantID))},
		bson.M{"$set": bson.M{"plan": string(plan), "plan_updated_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: merchant %s", models.ErrNotFound, merchantID)
	}
	return nil
}

func (t *mongoTx) InsertAuditLog(ctx context.Context, l models.AuditLog) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return t.s.insertAuditLog(ctx, l)
}

func (s *Store) insertAuditLog(ctx context.Context, l models.AuditLog) error {
	_, err := s.col(colAuditLogs).InsertOne(ctx, toAuditDoc(l))
	return err
}

// ----------------- Reader -----------------

func isNoDocuments(err error) bool { return errors.Is(err, mongo.ErrNoDocuments) }

func (s *Store) GetAccount(ctx context.Context, ref models.AccountRef) (models.Account, error) {
	var d accountDoc
	if err := s.col(colAccounts).FindOne(ctx, bson.M{"_id": accountID(ref)}).Decode(&d); err != nil {
		if isNoDocuments(err) {
			return models.Account{}, fmt.Errorf("%w: account %s", models.ErrNotFound, ref)
		}
		return models.Account{}, err
	}
	return d.toModel(), nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var d transactionDoc
	if err := s.col(colTransactions).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if isNoDocuments(err) {
			return models.Transaction{}, fmt.Errorf("%w: transaction %s", models.ErrNotFound, id)
		}
		return models.Transaction{}, err
	}
	return d.toModel(), nil
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.col(colTransactions).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Transaction, len(docs))
	for i := range docs {
		out[i] = docs[i].toModel()
	}
	return out, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (models.Invoice, error) {
	var d invoiceDoc
	if err := s.col(colInvoices).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if isNoDocuments(err) {
			return models.Invoice{}, fmt.Errorf("%w: invoice %s", models.ErrNotFound, id)
		}
		return models.Invoice{}, err
	}
	return d.toModel(), nil
}

func (s *Store) ListInvoicesByMerchant(ctx context.Context, merchantID string) ([]models.Invoice, error) {
	cur, err := s.col(colInvoices).Find(ctx, bson.M{"merchant_id": merchantID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []invoiceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Invoice, len(docs))
	for i := range docs {
		out[i] = docs[i].toModel()
	}
	return out, nil
}

func (s *Store) ListNotifications(ctx context.Context, merchantID string) ([]models.Notification, error) {
	cur, err := s.col(colNotifications).Find(ctx, bson.M{"merchant_id": merchantID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100))
	if err != nil {
		return nil, err
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Notification, len(docs))
	for i := range docs {
		out[i] = docs[i].toModel()
	}
	return out, nil
}

func (s *Store) GetAdmin(ctx context.Context, uid string) (models.AdminUser, error) {
	var d adminDoc
	if err := s.col(colAdmins).FindOne(ctx, bson.M{"_id": uid}).Decode(&d); err != nil {
		if isNoDocuments(err) {
			return models.AdminUser{}, fmt.Errorf("%w: admin %s", models.ErrNotFound, uid)
		}
		return models.AdminUser{}, err
	}
	return models.AdminUser{UID: d.UID, Email: d.Email, Role: models.AdminRole(d.Role), CreatedAt: d.CreatedAt}, nil
}
