package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/molecule"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "molview"

type atomDoc struct {
	Element string  `bson:"element"`
	X       float64 `bson:"x"`
	Y       float64 `bson:"y"`
	Z       float64 `bson:"z"`
}

type bondDoc struct {
	A1     int `bson:"a1"`
	A2     int `bson:"a2"`
	Epairs int `bson:"epairs"`
}

type moleculeDoc struct {
	Name      string    `bson:"name"`
	IndexBase int       `bson:"index_base"`
	AtomCount int       `bson:"atom_count"`
	BondCount int       `bson:"bond_count"`
	Atoms     []atomDoc `bson:"atoms,omitempty"`
	Bonds     []bondDoc `bson:"bonds,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// Mongo is a [Store] keeping one document per molecule.
type Mongo struct {
	client    *mongo.Client
	molecules *mongo.Collection
	elements  *mongo.Collection
}

// NewMongo connects to uri and ensures the unique indexes exist.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongo")
	}

	db := client.Database(database)
	s := &Mongo{
		client:    client,
		molecules: db.Collection("molecules"),
		elements:  db.Collection("elements"),
	}

	indexes := []struct {
		coll *mongo.Collection
		key  string
	}{
		{s.molecules, "name"},
		{s.elements, "code"},
	}
	for _, ix := range indexes {
		_, err := ix.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: ix.key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create index on %s", ix.key)
		}
	}
	return s, nil
}

// Ping checks that the primary is reachable.
func (s *Mongo) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Mongo) Save(ctx context.Context, name string, m *molecule.Molecule) error {
	if err := checkSave(name, m); err != nil {
		return err
	}
	doc := moleculeDoc{
		Name:      name,
		IndexBase: IndexBase,
		AtomCount: m.AtomCount(),
		BondCount: m.BondCount(),
		Atoms:     make([]atomDoc, len(m.Atoms)),
		Bonds:     make([]bondDoc, len(m.Bonds)),
		CreatedAt: time.Now().UTC(),
	}
	for i, a := range m.Atoms {
		doc.Atoms[i] = atomDoc{Element: a.Element, X: a.X, Y: a.Y, Z: a.Z}
	}
	for i, b := range m.Bonds {
		doc.Bonds[i] = bondDoc{A1: b.A1, A2: b.A2, Epairs: b.Epairs}
	}

	if _, err := s.molecules.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflict(name)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert molecule %q", name)
	}
	return nil
}

func (s *Mongo) Load(ctx context.Context, name string) (*molecule.Molecule, error) {
	var doc moleculeDoc
	err := s.molecules.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load molecule %q", name)
	}

	atoms := make([]molecule.Atom, len(doc.Atoms))
	for i, a := range doc.Atoms {
		atoms[i] = molecule.Atom{Element: a.Element, X: a.X, Y: a.Y, Z: a.Z}
	}
	bonds := make([]molecule.Bond, len(doc.Bonds))
	for i, b := range doc.Bonds {
		bonds[i] = molecule.Bond{A1: b.A1, A2: b.A2, Epairs: b.Epairs}
	}
	return rebuild(name, doc.IndexBase, atoms, bonds)
}

func (s *Mongo) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetProjection(bson.M{"atoms": 0, "bonds": 0}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.molecules.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list molecules")
	}
	var docs []moleculeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode molecule list")
	}
	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{Name: d.Name, Atoms: d.AtomCount, Bonds: d.BondCount, CreatedAt: d.CreatedAt}
	}
	return out, nil
}

func (s *Mongo) Delete(ctx context.Context, name string) error {
	res, err := s.molecules.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete molecule %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *Mongo) Elements(ctx context.Context) (*elements.Table, error) {
	cur, err := s.elements.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query elements")
	}
	var elems []elements.Element
	if err := cur.All(ctx, &elems); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode elements")
	}
	return elements.NewTable(elems...), nil
}

func (s *Mongo) PutElement(ctx context.Context, e elements.Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.elements.ReplaceOne(ctx, bson.M{"code": e.Code}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "put element %s", e.Code)
	}
	return nil
}

func (s *Mongo) DeleteElement(ctx context.Context, code string) error {
	res, err := s.elements.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete element %s", code)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "element %q not found", code)
	}
	return nil
}

// Close disconnects the client.
func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
