package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shikshaconnect/shiksha/core/attendance"
)

type attendanceRepository struct {
	coll *mongo.Collection
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *mongo.Database) *attendanceRepository {
	return &attendanceRepository{coll: db.Collection(attendanceCollection)}
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, studentID, date string) (attendance.Record, error) {
	var rec attendance.Record
	err := repo.coll.FindOne(ctx, bson.M{"student_id": studentID, "date": date}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "finding attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if _, err := repo.coll.InsertOne(ctx, rec); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, studentID, date string, upd attendance.RecordUpdate) error {
	res, err := repo.coll.UpdateOne(
		ctx,
		bson.M{"student_id": studentID, "date": date},
		bson.M{"$set": bson.M{
			"status":    upd.Status,
			"marked_by": upd.MarkedBy,
			"marked_at": upd.MarkedAt,
			"method":    upd.Method,
		}},
	)
	if err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	if res.MatchedCount == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	query := bson.M{}
	if filter.SchoolID != "" {
		query["school_id"] = filter.SchoolID
	}
	if filter.ClassName != "" {
		query["class_name"] = filter.ClassName
	}
	if filter.Section != "" {
		query["section"] = filter.Section
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	} else if filter.StartDate != "" && filter.EndDate != "" {
		query["date"] = bson.M{"$gte": filter.StartDate, "$lte": filter.EndDate}
	} else if filter.StartDate != "" {
		query["date"] = bson.M{"$gte": filter.StartDate}
	} else if filter.EndDate != "" {
		query["date"] = bson.M{"$lte": filter.EndDate}
	}

	cur, err := repo.coll.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "finding attendance records")
	}
	defer func() { _ = cur.Close(ctx) }()

	recs := make([]attendance.Record, 0)
	if err = cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(err, "decoding attendance records")
	}
	return recs, nil
}
