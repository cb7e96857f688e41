package validators

import "go.mongodb.org/mongo-driver/bson"

const timePattern = "^([01][0-9]|2[0-3]):[0-5][0-9]$"

var AvailabilityRuleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"day_of_week",
			"is_available",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"day_of_week": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  6,
			},

			"is_available": bson.M{
				"bsonType": "bool",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"service_type_id": bson.M{
				"bsonType": "string",
			},

			"buffer_minutes": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  480,
			},

			"max_bookings_per_day": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  200,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
