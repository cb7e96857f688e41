package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"duration_minutes",
			"allowed_days",
			"max_bookings_per_day",
			"max_advance_days",
			"is_active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"duration_minutes": bson.M{
				"bsonType": "int",
				"minimum":  15,
				"maximum":  480,
			},

			"buffer_minutes": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  480,
			},

			"allowed_days": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "int",
					"minimum":  0,
					"maximum":  6,
				},
			},

			"is_exclusive": bson.M{
				"bsonType": "bool",
			},

			"exclusive_days": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "int",
					"minimum":  0,
					"maximum":  6,
				},
			},

			"max_bookings_per_day": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  200,
			},

			"min_advance_hours": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  720,
			},

			"max_advance_days": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  365,
			},

			"requires_approval": bson.M{
				"bsonType": "bool",
			},

			"is_active": bson.M{
				"bsonType": "bool",
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
