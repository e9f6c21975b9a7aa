package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shikshaconnect/shiksha/core/student"
)

type studentRepository struct {
	coll *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *mongo.Database) *studentRepository {
	return &studentRepository{coll: db.Collection(studentsCollection)}
}

func (repo *studentRepository) CheckRollNumberUniqueness(ctx context.Context, rollNumber, className, section, schoolID string) error {
	err := repo.coll.FindOne(ctx, bson.M{
		"roll_number": rollNumber,
		"class_name":  className,
		"section":     section,
		"school_id":   schoolID,
	}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return errors.Wrap(err, "checking roll number uniqueness")
	}
	return student.ErrRollExists
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if _, err := repo.coll.InsertOne(ctx, std); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var std student.Student
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&std)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by id")
	}
	return std, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, schoolID string, filter student.QueryFilter) ([]student.Student, error) {
	query := bson.M{"school_id": schoolID}
	if filter.ClassName != "" {
		query["class_name"] = filter.ClassName
	}
	if filter.Section != "" {
		query["section"] = filter.Section
	}

	cur, err := repo.coll.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	defer func() { _ = cur.Close(ctx) }()

	students := make([]student.Student, 0)
	if err = cur.All(ctx, &students); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	return students, nil
}

func (repo *studentRepository) CountStudents(ctx context.Context, schoolID string) (int64, error) {
	count, err := repo.coll.CountDocuments(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return count, nil
}

func (repo *studentRepository) GroupBySection(ctx context.Context, schoolID string) ([]student.SectionGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"school_id": schoolID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"class_name": "$class_name", "section": "$section"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.class_name", Value: 1},
			{Key: "_id.section", Value: 1},
		}}},
	}

	cur, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregating students")
	}
	defer func() { _ = cur.Close(ctx) }()

	var results []struct {
		ID struct {
			ClassName string `bson:"class_name"`
			Section   string `bson:"section"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err = cur.All(ctx, &results); err != nil {
		return nil, errors.Wrap(err, "decoding student groups")
	}

	groups := make([]student.SectionGroup, 0, len(results))
	for _, res := range results {
		groups = append(groups, student.SectionGroup{
			ClassName: res.ID.ClassName,
			Section:   res.ID.Section,
			Count:     res.Count,
		})
	}
	return groups, nil
}
