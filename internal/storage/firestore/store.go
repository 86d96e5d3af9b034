// Package firestore backs the commit and rules stores with Cloud Firestore.
// Records live under users/{uid}/transactions and users/{uid}/merchantRules.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Shihan7021/fintrack1/internal/domain/commit"
	"github.com/Shihan7021/fintrack1/internal/domain/rules"
)

const (
	usersCollection        = "users"
	transactionsCollection = "transactions"
	rulesCollection        = "merchantRules"
)

// Store implements commit.Store and rules.Store on Cloud Firestore.
type Store struct {
	client *firestore.Client
	logger *slog.Logger
}

// New connects to the given project. Credentials resolve from the
// environment unless a service-account file is supplied.
func New(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{client: client, logger: logger}, nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) userDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(userID)
}

// CreateTransaction appends one record to the user's transactions
// collection. The document ID is auto-generated and the creation time is
// stamped by the server.
func (s *Store) CreateTransaction(ctx context.Context, userID string, rec commit.Record) error {
	_, _, err := s.userDoc(userID).Collection(transactionsCollection).Add(ctx, map[string]any{
		"type":        rec.Type,
		"category":    rec.Category,
		"amount":      rec.Amount,
		"date":        rec.Date,
		"description": rec.Description,
		"comment":     rec.Comment,
		"createdAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's records, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]commit.Record, error) {
	iter := s.userDoc(userID).Collection(transactionsCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []commit.Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		var rec commit.Record
		if err := doc.DataTo(&rec); err != nil {
			s.logger.Warn("skipping malformed transaction document",
				slog.String("doc", doc.Ref.ID), slog.Any("error", err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveMerchantRule upserts a learned categorization rule for the user.
func (s *Store) SaveMerchantRule(ctx context.Context, userID string, rule rules.MerchantRule) error {
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	_, err := s.userDoc(userID).Collection(rulesCollection).Doc(rule.ID.String()).Set(ctx, rule)
	if err != nil {
		return fmt.Errorf("save merchant rule: %w", err)
	}
	return nil
}

// ListMerchantRules fetches all learned rules for the user.
func (s *Store) ListMerchantRules(ctx context.Context, userID string) ([]rules.MerchantRule, error) {
	iter := s.userDoc(userID).Collection(rulesCollection).Documents(ctx)
	defer iter.Stop()

	var out []rules.MerchantRule
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list merchant rules: %w", err)
		}
		var rule rules.MerchantRule
		if err := doc.DataTo(&rule); err != nil {
			s.logger.Warn("skipping malformed rule document",
				slog.String("doc", doc.Ref.ID), slog.Any("error", err))
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}
