package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/database"
)

// ErrInsufficientCredits 余额不足，调用方应拒绝本次计费查询
var ErrInsufficientCredits = errors.New("insufficient credits")

// ErrAccountNotFound 账户不存在
var ErrAccountNotFound = errors.New("credit account not found")

// Service 积分账本服务
//
// 余额扣减通过条件 UPDATE 在单条语句内完成，并发扣减不会把余额扣成负数。
// 每次成功扣减都会写入一条审计流水。
type Service struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

// New 创建积分账本服务
// dialect 取 database.DialectMySQL 或 database.DialectPostgres
func New(db *sql.DB, dialect string, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

// rebind 将 ? 占位符转换为目标方言的占位符
// MySQL 原样返回，PostgreSQL 转换为 $1, $2, ...
func (s *Service) rebind(query string) string {
	if s.dialect != database.DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// AuthorizeAndCharge 原子地校验并扣减用户积分
//
// 扣减成功时写入审计流水；余额不足返回 ErrInsufficientCredits，
// 账户不存在返回 ErrAccountNotFound，两种情况都不产生流水。
func (s *Service) AuthorizeAndCharge(ctx context.Context, userID string, amount int, reason string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}
	if amount <= 0 {
		return fmt.Errorf("charge amount must be positive, got %d", amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. 条件扣减：只有余额足够时才会命中
	result, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE credit_accounts SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND balance >= ?`),
		amount, userID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to charge credits: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read charge result: %w", err)
	}

	if affected == 0 {
		// 2. 区分余额不足和账户不存在
		var balance int64
		err := tx.QueryRowContext(ctx,
			s.rebind(`SELECT balance FROM credit_accounts WHERE user_id = ?`),
			userID,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", userID, ErrAccountNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to query balance: %w", err)
		}

		if s.logger != nil {
			s.logger.Warn("credit charge rejected",
				zap.String("user_id", userID),
				zap.Int("amount", amount),
				zap.Int64("balance", balance),
			)
		}
		return fmt.Errorf("user %s has %d credits, need %d: %w", userID, balance, amount, ErrInsufficientCredits)
	}

	// 3. 写入审计流水
	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO credit_transactions (user_id, amount, reason, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`),
		userID, -amount, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("charged credits",
			zap.String("user_id", userID),
			zap.Int("amount", amount),
			zap.String("reason", reason),
		)
	}

	return nil
}

// Credit 为用户充值积分，并写入审计流水
func (s *Service) Credit(ctx context.Context, userID string, amount int, reason string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE credit_accounts SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`),
		amount, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read credit result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrAccountNotFound)
	}

	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO credit_transactions (user_id, amount, reason, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`),
		userID, amount, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("credited account",
			zap.String("user_id", userID),
			zap.Int("amount", amount),
			zap.String("reason", reason),
		)
	}

	return nil
}

// Balance 查询用户当前余额
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("userID cannot be empty")
	}

	var balance int64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT balance FROM credit_accounts WHERE user_id = ?`),
		userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %s: %w", userID, ErrAccountNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}

	return balance, nil
}
