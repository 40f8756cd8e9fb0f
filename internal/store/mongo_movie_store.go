// movie-service/internal/store/mongo_movie_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"movie-service/internal/domain"
)

const (
	DefaultDatabase = "ws5_movies"
	MovieCollection = "movies"

	// codeDocumentValidationFailure is returned when a collection validator
	// rejects a write.
	codeDocumentValidationFailure = 121
)

// movieDocument is the BSON shape of a movie in the collection.
type movieDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Title     string        `bson:"title"`
	Year      *int          `bson:"year,omitempty"`
	Director  *string       `bson:"director,omitempty"`
	Rating    *float64      `bson:"rating,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *movieDocument) toDomain() *domain.Movie {
	return &domain.Movie{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Year:      d.Year,
		Director:  d.Director,
		Rating:    d.Rating,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// MongoMovieStore implements MovieStore on a MongoDB collection.
type MongoMovieStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
	now        func() time.Time
}

// ConnectMongo connects to uri and pings the primary. The database comes from
// the URI path, falling back to DefaultDatabase.
func ConnectMongo(ctx context.Context, uri string, logger *slog.Logger) (*MongoMovieStore, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongodb uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = DefaultDatabase
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	logger.InfoContext(ctx, "Connected to MongoDB", slog.String("database", dbName), slog.String("collection", MovieCollection))
	return NewMongoMovieStore(client, client.Database(dbName).Collection(MovieCollection), logger), nil
}

func NewMongoMovieStore(client *mongo.Client, collection *mongo.Collection, logger *slog.Logger) *MongoMovieStore {
	return &MongoMovieStore{
		client:     client,
		collection: collection,
		logger:     logger,
		now:        domain.Now,
	}
}

func (s *MongoMovieStore) List(ctx context.Context, limit int) ([]*domain.Movie, error) {
	limit = clampLimit(limit)
	s.logger.DebugContext(ctx, "Executing List movies find", slog.Int("limit", limit))

	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer cur.Close(ctx)

	var docs []movieDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode movies: %w", err)
	}
	movies := make([]*domain.Movie, 0, len(docs))
	for i := range docs {
		movies = append(movies, docs[i].toDomain())
	}
	return movies, nil
}

func (s *MongoMovieStore) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var doc movieDocument
	if err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, s.mapError(ctx, "get", id, err)
	}
	return doc.toDomain(), nil
}

func (s *MongoMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	if err := checkTitle(movie.Title); err != nil {
		return err
	}
	now := s.now()
	doc := movieDocument{
		ID:        bson.NewObjectID(),
		Title:     movie.Title,
		Year:      movie.Year,
		Director:  movie.Director,
		Rating:    movie.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return s.mapError(ctx, "create", "", err)
	}
	movie.ID = doc.ID.Hex()
	movie.CreatedAt = now
	movie.UpdatedAt = now
	s.logger.InfoContext(ctx, "Movie created in MongoDB", slog.String("movieID", movie.ID))
	return nil
}

func (s *MongoMovieStore) Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if fields.Title.Set {
		if err := checkTitle(fields.Title.Or("")); err != nil {
			return nil, err
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc movieDocument
	err = s.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, updateDocument(fields, s.now()), opts).Decode(&doc)
	if err != nil {
		return nil, s.mapError(ctx, "update", id, err)
	}
	return doc.toDomain(), nil
}

func (s *MongoMovieStore) Delete(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var doc movieDocument
	if err := s.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, s.mapError(ctx, "delete", id, err)
	}
	return doc.toDomain(), nil
}

func (s *MongoMovieStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoMovieStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// updateDocument builds one update document for the supplied fields.
// updatedAt only moves forward ($max), so it never drops below createdAt
// even if clocks disagree.
func updateDocument(fields domain.MovieFields, now time.Time) bson.D {
	var set, unset bson.D
	if fields.Title.Set {
		set = append(set, bson.E{Key: "title", Value: fields.Title.Or("")})
	}
	setOrUnset(&set, &unset, "year", fields.Year)
	setOrUnset(&set, &unset, "director", fields.Director)
	setOrUnset(&set, &unset, "rating", fields.Rating)

	update := bson.D{{Key: "$max", Value: bson.D{{Key: "updatedAt", Value: now}}}}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

func setOrUnset[T any](set, unset *bson.D, key string, f domain.Field[T]) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		*unset = append(*unset, bson.E{Key: key, Value: ""})
		return
	}
	*set = append(*set, bson.E{Key: key, Value: *f.Value})
}

func (s *MongoMovieStore) mapError(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrMovieNotFound
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeDocumentValidationFailure) {
		s.logger.WarnContext(ctx, "MongoDB rejected movie document", slog.String("op", op), slog.String("movieID", id), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrInvalidMovie, err)
	}
	s.logger.ErrorContext(ctx, "MongoDB movie operation failed", slog.String("op", op), slog.String("movieID", id), slog.String("error", err.Error()))
	return fmt.Errorf("failed to %s movie: %w", op, err)
}
