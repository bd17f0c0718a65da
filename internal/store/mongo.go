package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"animeverse/pkg/models"
	"animeverse/pkg/utils"
)

const (
	colUsers       = "users"
	colAnimes      = "animes"
	colGenres      = "genres"
	colAnimeGenres = "anime_genres"
	colEpisodes    = "episodes"
	colFavorites   = "favorites"
)

// MongoStore is the primary backend. Passwords are bcrypt-hashed and
// uniqueness is enforced by indexes; duplicate-key failures surface as
// ErrConflict so callers see the same sentinel either backend raises.
//
// Sequential integer identifiers (handed out by the fallback backend) are
// bridged positionally for catalog entities: N selects the Nth document in
// _id order. User identities are exempt from the bridge. Cascading
// deletes run as individual operations without a transaction, so a crash
// mid-cascade can leave orphaned children; reads tolerate those orphans.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the uniqueness indexes both write paths rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		colGenres: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		colAnimeGenres: {
			{Keys: bson.D{{Key: "animeId", Value: 1}, {Key: "genreId", Value: 1}}, Options: unique},
		},
		colEpisodes: {
			{Keys: bson.D{{Key: "animeId", Value: 1}, {Key: "number", Value: 1}}, Options: unique},
		},
		colFavorites: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "animeId", Value: 1}}, Options: unique},
		},
	}
	for name, ims := range specs {
		if _, err := s.col(name).Indexes().CreateMany(ctx, ims); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// EnsureAdminUser creates the bootstrap admin account when no user holds
// that username yet. Existing accounts are never touched.
func (s *MongoStore) EnsureAdminUser(ctx context.Context) error {
	existing, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		return nil
	}
	_, err = s.CreateUser(ctx, models.NewUser{
		Username: "admin",
		Email:    "admin@animeverse.com",
		Password: "admin123",
		IsAdmin:  true,
	})
	if err != nil && err != ErrConflict {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}

// resolve maps a parsed identifier to a native ObjectID within coll. A
// sequence number N selects the Nth document in ascending _id order;
// out-of-range means not-found, reported as ok=false with a nil error.
func (s *MongoStore) resolve(ctx context.Context, coll *mongo.Collection, id ID) (primitive.ObjectID, bool, error) {
	switch id.Kind() {
	case KindObject:
		return id.Object(), true, nil
	case KindSeq:
		opts := options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetSkip(int64(id.Seq() - 1)).
			SetLimit(1).
			SetProjection(bson.M{"_id": 1})
		cur, err := coll.Find(ctx, bson.M{}, opts)
		if err != nil {
			return primitive.NilObjectID, false, fmt.Errorf("resolve positional id: %w", err)
		}
		defer cur.Close(ctx)
		if cur.Next(ctx) {
			var doc struct {
				ID primitive.ObjectID `bson:"_id"`
			}
			if err := cur.Decode(&doc); err != nil {
				return primitive.NilObjectID, false, fmt.Errorf("decode positional id: %w", err)
			}
			return doc.ID, true, nil
		}
		return primitive.NilObjectID, false, cur.Err()
	default:
		return primitive.NilObjectID, false, ErrInvalidID
	}
}

// users

// userObjectID maps a parsed identifier for the users collection. User
// identities are never bridged positionally: a sequence number belongs to
// the memory backend, and resolving it against whatever document happens to
// sit at that position would authenticate the wrong account (and hand over
// its privileges). Sequential ids are simply not-found here, which lets
// session restoration fall through to the memory backend.
func userObjectID(id ID) (primitive.ObjectID, bool, error) {
	switch id.Kind() {
	case KindObject:
		return id.Object(), true, nil
	case KindSeq:
		return primitive.NilObjectID, false, nil
	default:
		return primitive.NilObjectID, false, ErrInvalidID
	}
}

func (s *MongoStore) GetUser(ctx context.Context, id ID) (*models.User, error) {
	oid, ok, err := userObjectID(id)
	if err != nil || !ok {
		return nil, err
	}
	var doc models.UserDoc
	err = s.col(colUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := doc.ToUser()
	return &u, nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc models.UserDoc
	err := s.col(colUsers).FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	u := doc.ToUser()
	return &u, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	doc := models.UserDoc{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		IsAdmin:   in.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.col(colUsers).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	u := doc.ToUser()
	return &u, nil
}

func (s *MongoStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.col(colUsers).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.User{}
	for cur.Next(ctx) {
		var doc models.UserDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, doc.ToUser())
	}
	return out, cur.Err()
}

// adminCount normalizes the flag in Go because legacy documents store it as
// a string; a $in filter over the known spellings would miss variants.
func (s *MongoStore) adminCount(ctx context.Context) (int, error) {
	cur, err := s.col(colUsers).Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"isAdmin": 1}))
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	defer cur.Close(ctx)
	n := 0
	for cur.Next(ctx) {
		var doc struct {
			IsAdmin any `bson:"isAdmin"`
		}
		if err := cur.Decode(&doc); err != nil {
			return 0, fmt.Errorf("decode admin flag: %w", err)
		}
		if utils.NormalizeBool(doc.IsAdmin) {
			n++
		}
	}
	return n, cur.Err()
}

func (s *MongoStore) SetUserAdmin(ctx context.Context, id ID, isAdmin bool) (*models.User, error) {
	oid, ok, err := userObjectID(id)
	if err != nil || !ok {
		return nil, err
	}
	current, err := s.GetUser(ctx, ObjectID(oid))
	if err != nil || current == nil {
		return nil, err
	}
	if current.IsAdmin && !isAdmin {
		n, err := s.adminCount(ctx)
		if err != nil {
			return nil, err
		}
		if n <= 1 {
			return nil, ErrLastAdmin
		}
	}
	update := bson.M{"$set": bson.M{"isAdmin": isAdmin, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.UserDoc
	err = s.col(colUsers).FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user admin flag: %w", err)
	}
	u := doc.ToUser()
	return &u, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id ID) (bool, error) {
	oid, ok, err := userObjectID(id)
	if err != nil || !ok {
		return false, err
	}
	current, err := s.GetUser(ctx, ObjectID(oid))
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	if current.IsAdmin {
		n, err := s.adminCount(ctx)
		if err != nil {
			return false, err
		}
		if n <= 1 {
			return false, ErrLastAdmin
		}
	}
	res, err := s.col(colUsers).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// animes

func (s *MongoStore) findAnimes(ctx context.Context, filter any, opts ...*options.FindOptions) ([]models.Anime, error) {
	cur, err := s.col(colAnimes).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find animes: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Anime{}
	for cur.Next(ctx) {
		var doc models.AnimeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode anime: %w", err)
		}
		out = append(out, doc.ToAnime())
	}
	return out, cur.Err()
}

func (s *MongoStore) ListAnimes(ctx context.Context) ([]models.Anime, error) {
	return s.findAnimes(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *MongoStore) GetAnime(ctx context.Context, id ID) (*models.Anime, error) {
	oid, ok, err := s.resolve(ctx, s.col(colAnimes), id)
	if err != nil || !ok {
		return nil, err
	}
	var doc models.AnimeDoc
	err = s.col(colAnimes).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find anime: %w", err)
	}
	a := doc.ToAnime()
	return &a, nil
}

func (s *MongoStore) CreateAnime(ctx context.Context, in models.AnimeInput) (*models.Anime, error) {
	doc := models.AnimeDoc{
		Title:       in.Title,
		Description: in.Description,
		CoverImage:  in.CoverImage,
		BannerImage: in.BannerImage,
		ReleaseYear: in.ReleaseYear,
		Status:      in.Status,
		Type:        in.Type,
		Episodes:    in.Episodes,
		Rating:      in.Rating,
		Studio:      in.Studio,
	}
	res, err := s.col(colAnimes).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert anime: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	a := doc.ToAnime()
	return &a, nil
}

func (s *MongoStore) UpdateAnime(ctx context.Context, id ID, patch models.AnimePatch) (*models.Anime, error) {
	oid, ok, err := s.resolve(ctx, s.col(colAnimes), id)
	if err != nil || !ok {
		return nil, err
	}
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.CoverImage != nil {
		set["coverImage"] = *patch.CoverImage
	}
	if patch.BannerImage != nil {
		set["bannerImage"] = *patch.BannerImage
	}
	if patch.ReleaseYear != nil {
		set["releaseYear"] = *patch.ReleaseYear
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Episodes != nil {
		set["episodes"] = *patch.Episodes
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Studio != nil {
		set["studio"] = *patch.Studio
	}
	if len(set) == 0 {
		return s.GetAnime(ctx, ObjectID(oid))
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.AnimeDoc
	err = s.col(colAnimes).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update anime: %w", err)
	}
	a := doc.ToAnime()
	return &a, nil
}

func (s *MongoStore) DeleteAnime(ctx context.Context, id ID) (bool, error) {
	oid, ok, err := s.resolve(ctx, s.col(colAnimes), id)
	if err != nil || !ok {
		return false, err
	}
	res, err := s.col(colAnimes).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete anime: %w", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	// children go after the parent; orphans from a partial cascade are
	// skipped on read
	if _, err := s.col(colEpisodes).DeleteMany(ctx, bson.M{"animeId": oid}); err != nil {
		return true, fmt.Errorf("delete anime episodes: %w", err)
	}
	if _, err := s.col(colAnimeGenres).DeleteMany(ctx, bson.M{"animeId": oid}); err != nil {
		return true, fmt.Errorf("delete anime genre links: %w", err)
	}
	return true, nil
}

func (s *MongoStore) SearchAnimes(ctx context.Context, query string) ([]models.Anime, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"description": re},
	}}
	return s.findAnimes(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *MongoStore) TrendingAnimes(ctx context.Context, limit int) ([]models.Anime, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.findAnimes(ctx, bson.M{}, opts)
}

func (s *MongoStore) TopRatedAnimes(ctx context.Context, limit int) ([]models.Anime, error) {
	// ratings are stored as strings, so ordering happens here instead of in
	// the query
	rated, err := s.findAnimes(ctx, bson.M{"rating": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rated, func(i, j int) bool {
		ri, _ := strconv.ParseFloat(*rated[i].Rating, 64)
		rj, _ := strconv.ParseFloat(*rated[j].Rating, 64)
		return ri > rj
	})
	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

// genres

func (s *MongoStore) ListGenres(ctx context.Context) ([]models.Genre, error) {
	cur, err := s.col(colGenres).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Genre{}
	for cur.Next(ctx) {
		var doc models.GenreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode genre: %w", err)
		}
		out = append(out, doc.ToGenre())
	}
	return out, cur.Err()
}

func (s *MongoStore) GetGenre(ctx context.Context, id ID) (*models.Genre, error) {
	oid, ok, err := s.resolve(ctx, s.col(colGenres), id)
	if err != nil || !ok {
		return nil, err
	}
	var doc models.GenreDoc
	err = s.col(colGenres).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find genre: %w", err)
	}
	g := doc.ToGenre()
	return &g, nil
}

func (s *MongoStore) GetGenreByName(ctx context.Context, name string) (*models.Genre, error) {
	re := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
	var doc models.GenreDoc
	err := s.col(colGenres).FindOne(ctx, bson.M{"name": re}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find genre by name: %w", err)
	}
	g := doc.ToGenre()
	return &g, nil
}

func (s *MongoStore) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	// the unique index is case-sensitive; the lookup above it is not
	if existing, err := s.GetGenreByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrConflict
	}
	doc := models.GenreDoc{Name: name}
	res, err := s.col(colGenres).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert genre: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	g := doc.ToGenre()
	return &g, nil
}

func (s *MongoStore) UpdateGenre(ctx context.Context, id ID, name string) (*models.Genre, error) {
	oid, ok, err := s.resolve(ctx, s.col(colGenres), id)
	if err != nil || !ok {
		return nil, err
	}
	if existing, err := s.GetGenreByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != oid.Hex() {
		return nil, ErrConflict
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.GenreDoc
	err = s.col(colGenres).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"name": name}}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update genre: %w", err)
	}
	g := doc.ToGenre()
	return &g, nil
}

func (s *MongoStore) DeleteGenre(ctx context.Context, id ID) (bool, error) {
	oid, ok, err := s.resolve(ctx, s.col(colGenres), id)
	if err != nil || !ok {
		return false, err
	}
	res, err := s.col(colGenres).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete genre: %w", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	if _, err := s.col(colAnimeGenres).DeleteMany(ctx, bson.M{"genreId": oid}); err != nil {
		return true, fmt.Errorf("delete genre links: %w", err)
	}
	return true, nil
}

// anime-genre links

func (s *MongoStore) GenresForAnime(ctx context.Context, animeID ID) ([]models.Genre, error) {
	oid, ok, err := s.resolve(ctx, s.col(colAnimes), animeID)
	if err != nil || !ok {
		return nil, err
	}
	cur, err := s.col(colAnimeGenres).Find(ctx, bson.M{"animeId": oid})
	if err != nil {
		return nil, fmt.Errorf("find genre links: %w", err)
	}
	defer cur.Close(ctx)
	var genreIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var doc models.AnimeGenreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode genre link: %w", err)
		}
		genreIDs = append(genreIDs, doc.GenreID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(genreIDs) == 0 {
		return []models.Genre{}, nil
	}
	gcur, err := s.col(colGenres).Find(ctx, bson.M{"_id": bson.M{"$in": genreIDs}})
	if err != nil {
		return nil, fmt.Errorf("find linked genres: %w", err)
	}
	defer gcur.Close(ctx)
	out := []models.Genre{}
	for gcur.Next(ctx) {
		var doc models.GenreDoc
		if err := gcur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode genre: %w", err)
		}
		out = append(out, doc.ToGenre())
	}
	return out, gcur.Err()
}

func (s *MongoStore) AnimesForGenre(ctx context.Context, genreID ID) ([]models.Anime, error) {
	oid, ok, err := s.resolve(ctx, s.col(colGenres), genreID)
	if err != nil || !ok {
		return nil, err
	}
	cur, err := s.col(colAnimeGenres).Find(ctx, bson.M{"genreId": oid})
	if err != nil {
		return nil, fmt.Errorf("find genre links: %w", err)
	}
	defer cur.Close(ctx)
	var animeIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var doc models.AnimeGenreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode genre link: %w", err)
		}
		animeIDs = append(animeIDs, doc.AnimeID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(animeIDs) == 0 {
		return []models.Anime{}, nil
	}
	return s.findAnimes(ctx, bson.M{"_id": bson.M{"$in": animeIDs}})
}

func (s *MongoStore) LinkGenre(ctx context.Context, animeID, genreID ID) (*models.AnimeGenre, error) {
	aoid, ok, err := s.resolve(ctx, s.col(colAnimes), animeID)
	if err != nil || !ok {
		return nil, err
	}
	goid, ok, err := s.resolve(ctx, s.col(colGenres), genreID)
	if err != nil || !ok {
		return nil, err
	}
	doc := models.AnimeGenreDoc{AnimeID: aoid, GenreID: goid}
	res, err := s.col(colAnimeGenres).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert genre link: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	link := doc.ToAnimeGenre()
	return &link, nil
}

func (s *MongoStore) UnlinkGenre(ctx context.Context, animeID, genreID ID) (bool, error) {
	aoid, ok, err := s.resolve(ctx, s.col(colAnimes), animeID)
	if err != nil || !ok {
		return false, err
	}
	goid, ok, err := s.resolve(ctx, s.col(colGenres), genreID)
	if err != nil || !ok {
		return false, err
	}
	res, err := s.col(colAnimeGenres).DeleteMany(ctx, bson.M{"animeId": aoid, "genreId": goid})
	if err != nil {
		return false, fmt.Errorf("delete genre link: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// episodes

func (s *MongoStore) GetEpisode(ctx context.Context, id ID) (*models.Episode, error) {
	oid, ok, err := s.resolve(ctx, s.col(colEpisodes), id)
	if err != nil || !ok {
		return nil, err
	}
	var doc models.EpisodeDoc
	err = s.col(colEpisodes).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find episode: %w", err)
	}
	ep := doc.ToEpisode()
	return &ep, nil
}

func (s *MongoStore) EpisodesForAnime(ctx context.Context, animeID ID) ([]models.Episode, error) {
	oid, ok, err := s.resolve(ctx, s.col(colAnimes), animeID)
	if err != nil || !ok {
		return nil, err
	}
	cur, err := s.col(colEpisodes).Find(ctx, bson.M{"animeId": oid},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find episodes: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Episode{}
	for cur.Next(ctx) {
		var doc models.EpisodeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode episode: %w", err)
		}
		out = append(out, doc.ToEpisode())
	}
	return out, cur.Err()
}

func (s *MongoStore) RecentEpisodes(ctx context.Context, limit int) ([]models.RecentEpisode, error) {
	cur, err := s.col(colEpisodes).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "releaseDate", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find recent episodes: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.RecentEpisode{}
	for cur.Next(ctx) {
		var doc models.EpisodeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode episode: %w", err)
		}
		a, err := s.GetAnime(ctx, ObjectID(doc.AnimeID))
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		out = append(out, models.RecentEpisode{Anime: *a, Episode: doc.ToEpisode()})
	}
	return out, cur.Err()
}

func (s *MongoStore) CreateEpisode(ctx context.Context, in EpisodeInput) (*models.Episode, error) {
	aoid, ok, err := s.resolve(ctx, s.col(colAnimes), in.AnimeID)
	if err != nil || !ok {
		return nil, err
	}
	if a, err := s.GetAnime(ctx, ObjectID(aoid)); err != nil || a == nil {
		return nil, err
	}
	release := in.ReleaseDate
	if release.IsZero() {
		release = time.Now().UTC()
	}
	doc := models.EpisodeDoc{
		AnimeID:     aoid,
		Title:       in.Title,
		Number:      in.Number,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		VideoURL:    in.VideoURL,
		Duration:    in.Duration,
		ReleaseDate: release,
	}
	res, err := s.col(colEpisodes).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	ep := doc.ToEpisode()
	return &ep, nil
}

func (s *MongoStore) UpdateEpisode(ctx context.Context, id ID, patch EpisodePatch) (*models.Episode, error) {
	oid, ok, err := s.resolve(ctx, s.col(colEpisodes), id)
	if err != nil || !ok {
		return nil, err
	}
	set := bson.M{}
	if patch.AnimeID != nil {
		aoid, ok, err := s.resolve(ctx, s.col(colAnimes), *patch.AnimeID)
		if err != nil || !ok {
			return nil, err
		}
		if a, err := s.GetAnime(ctx, ObjectID(aoid)); err != nil || a == nil {
			return nil, err
		}
		set["animeId"] = aoid
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Number != nil {
		set["number"] = *patch.Number
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Thumbnail != nil {
		set["thumbnail"] = *patch.Thumbnail
	}
	if patch.VideoURL != nil {
		set["videoUrl"] = *patch.VideoURL
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.ReleaseDate != nil {
		set["releaseDate"] = *patch.ReleaseDate
	}
	if len(set) == 0 {
		return s.GetEpisode(ctx, ObjectID(oid))
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.EpisodeDoc
	err = s.col(colEpisodes).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update episode: %w", err)
	}
	ep := doc.ToEpisode()
	return &ep, nil
}

func (s *MongoStore) DeleteEpisode(ctx context.Context, id ID) (bool, error) {
	oid, ok, err := s.resolve(ctx, s.col(colEpisodes), id)
	if err != nil || !ok {
		return false, err
	}
	res, err := s.col(colEpisodes).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete episode: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// favorites

func (s *MongoStore) FavoriteAnimes(ctx context.Context, userID string) ([]models.Anime, error) {
	cur, err := s.col(colFavorites).Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find favorites: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Anime{}
	for cur.Next(ctx) {
		var doc models.FavoriteDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode favorite: %w", err)
		}
		a, err := s.GetAnime(ctx, ParseID(doc.AnimeID))
		if err != nil && err != ErrInvalidID {
			return nil, err
		}
		// favorites may reference animes deleted since; skip them
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, cur.Err()
}

func (s *MongoStore) AddFavorite(ctx context.Context, userID string, animeID ID) (*models.Favorite, error) {
	aoid, ok, err := s.resolve(ctx, s.col(colAnimes), animeID)
	if err != nil || !ok {
		return nil, err
	}
	if a, err := s.GetAnime(ctx, ObjectID(aoid)); err != nil || a == nil {
		return nil, err
	}
	doc := models.FavoriteDoc{UserID: userID, AnimeID: aoid.Hex()}
	res, err := s.col(colFavorites).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	fav := doc.ToFavorite()
	return &fav, nil
}

func (s *MongoStore) RemoveFavorite(ctx context.Context, userID string, animeID ID) (bool, error) {
	if animeID.IsInvalid() {
		return false, ErrInvalidID
	}
	aoid, ok, err := s.resolve(ctx, s.col(colAnimes), animeID)
	if err != nil || !ok {
		return false, err
	}
	res, err := s.col(colFavorites).DeleteMany(ctx, bson.M{"userId": userID, "animeId": aoid.Hex()})
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// stats

func (s *MongoStore) Counts(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{colAnimes, &stats.AnimeCount},
		{colEpisodes, &stats.EpisodeCount},
		{colGenres, &stats.GenreCount},
		{colUsers, &stats.UserCount},
	} {
		n, err := s.col(c.name).CountDocuments(ctx, bson.M{})
		if err != nil {
			return models.Stats{}, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = int(n)
	}
	return stats, nil
}
