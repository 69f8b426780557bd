package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const auditCollection = "audit_log"

// AuditRepoMongoDB guarda la auditoría en una colección de MongoDB.
type AuditRepoMongoDB struct {
	coll *mongo.Collection
}

var _ auditDomain.AuditStore = (*AuditRepoMongoDB)(nil)

func NewAuditRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*AuditRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &AuditRepoMongoDB{coll: client.Database(dbName).Collection(auditCollection)}, nil
}

// EnsureIndexes crea el índice de consulta por registro.
func (r *AuditRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tabela", Value: 1}, {Key: "registroId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

// Structs BSON locales para no poner tags de BSON en el dominio.
type mongoAuditEntry struct {
	ID         string    `bson:"_id"`
	Tabela     string    `bson:"tabela"`
	Acao       string    `bson:"acao"`
	RegistroID string    `bson:"registroId"`
	Dados      string    `bson:"dados"`
	IPAddress  string    `bson:"ipAddress"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (r *AuditRepoMongoDB) Log(ctx context.Context, e auditDomain.AuditEntry) error {
	if _, err := r.coll.InsertOne(ctx, toMongoAuditEntry(e)); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepoMongoDB) ListByRegistro(ctx context.Context, tabela, registroID string) ([]auditDomain.AuditEntry, error) {
	filter := bson.M{"tabela": tabela, "registroId": registroID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []auditDomain.AuditEntry
	for cursor.Next(ctx) {
		var me mongoAuditEntry
		if err := cursor.Decode(&me); err != nil {
			return nil, err
		}
		e, err := toDomainAuditEntry(me)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cursor.Err()
}

func toMongoAuditEntry(e auditDomain.AuditEntry) mongoAuditEntry {
	return mongoAuditEntry{
		ID:         e.ID.String(),
		Tabela:     e.Tabela,
		Acao:       e.Acao,
		RegistroID: e.RegistroID,
		Dados:      string(e.Dados),
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
}

func toDomainAuditEntry(me mongoAuditEntry) (auditDomain.AuditEntry, error) {
	id, err := uuid.Parse(me.ID)
	if err != nil {
		return auditDomain.AuditEntry{}, fmt.Errorf("invalid audit entry id %q: %w", me.ID, err)
	}
	return auditDomain.AuditEntry{
		ID:         id,
		Tabela:     me.Tabela,
		Acao:       me.Acao,
		RegistroID: me.RegistroID,
		Dados:      json.RawMessage(me.Dados),
		IPAddress:  me.IPAddress,
		CreatedAt:  me.CreatedAt.UTC(),
	}, nil
}
