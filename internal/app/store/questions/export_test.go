package questionstore

import "go.mongodb.org/mongo-driver/mongo"

// Collection lets tests seed raw documents.
func (s *Store) Collection() *mongo.Collection { return s.c }
