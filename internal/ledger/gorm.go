package ledger

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blastyard/arena-server/internal/session"
)

// PlayerProgress is one player's lifetime reward tally.
type PlayerProgress struct {
	Player string `gorm:"primaryKey"`
	Coins  int64
	Wins   int64
}

// Gorm is the postgres-backed reward ledger, used when DATABASE_URL is set.
// Reward signals are fire-and-forget: a failed write is logged and dropped,
// never surfaced into the round lifecycle.
type Gorm struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenGorm(dsn string, log *zap.Logger) (*Gorm, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	if err := db.AutoMigrate(&PlayerProgress{}); err != nil {
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}
	return &Gorm{db: db, log: log}, nil
}

func (g *Gorm) CreditCurrency(s session.View, amount int) {
	err := g.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"coins": gorm.Expr("player_progresses.coins + ?", amount),
		}),
	}).Create(&PlayerProgress{Player: s.Name, Coins: int64(amount)}).Error
	if err != nil {
		g.log.Error("credit currency failed", zap.String("player", s.Name), zap.Error(err))
	}
}

func (g *Gorm) IncrementWinCount(s session.View) {
	err := g.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"wins": gorm.Expr("player_progresses.wins + 1"),
		}),
	}).Create(&PlayerProgress{Player: s.Name, Wins: 1}).Error
	if err != nil {
		g.log.Error("win increment failed", zap.String("player", s.Name), zap.Error(err))
	}
}
