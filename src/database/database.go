package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client     *mongo.Client
	once       sync.Once // ConnectMongoDB() must only run once
	connectErr error

	TemplateCollection         *mongo.Collection
	AssignmentCollection       *mongo.Collection
	SubmissionCollection       *mongo.Collection
	CompanyAggregateCollection *mongo.Collection
	ProjectProgressCollection  *mongo.Collection
	ProjectCollection          *mongo.Collection
	CompanyCollection          *mongo.Collection
	EvaluatorCollection        *mongo.Collection
)

// ConnectMongoDB connects to MongoDB exactly once and wires the collections.
func ConnectMongoDB() error {

	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("❌ MONGO_URI environment variable not set. Please create a .env file and set it.")
	}

	once.Do(func() {
		clientOptions := options.Client().ApplyURI(mongoURI)

		client, connectErr = mongo.Connect(context.TODO(), clientOptions)
		if connectErr != nil {
			log.Fatal("❌ Failed to connect to MongoDB:", connectErr)
			return
		}

		connectErr = client.Ping(context.TODO(), readpref.Primary())
		if connectErr != nil {
			log.Fatal("❌ MongoDB ping failed:", connectErr)
			return
		}

		TemplateCollection = GetCollection("EvalhubDB", "templates")
		AssignmentCollection = GetCollection("EvalhubDB", "assignments")
		SubmissionCollection = GetCollection("EvalhubDB", "submissions")
		CompanyAggregateCollection = GetCollection("EvalhubDB", "companyAggregates")
		ProjectProgressCollection = GetCollection("EvalhubDB", "projectProgress")
		ProjectCollection = GetCollection("EvalhubDB", "projects")
		CompanyCollection = GetCollection("EvalhubDB", "companies")
		EvaluatorCollection = GetCollection("EvalhubDB", "evaluators")

		log.Println("✅ MongoDB connected successfully")
	})

	return connectErr
}

// ListDatabases prints every database the client can see (startup diagnostics).
func ListDatabases() {
	if client == nil {
		log.Fatal("❌ MongoDB client is nil")
	}

	dbs, err := client.ListDatabaseNames(context.TODO(), bson.M{})
	if err != nil {
		log.Fatal("❌ Error listing databases:", err)
	}

	fmt.Println("📌 Databases in MongoDB:")
	for _, db := range dbs {
		fmt.Println(" -", db)
	}
}

// GetCollection returns a collection handle from the shared client.
func GetCollection(dbName, collectionName string) *mongo.Collection {
	if client == nil {
		log.Fatal("❌ MongoDB client is nil")
	}
	return client.Database(dbName).Collection(collectionName)
}
