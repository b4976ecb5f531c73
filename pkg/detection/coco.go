package detection

// COCOClasses contains the 80 COCO class names indexed by class ID.
var COCOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// IsFurniture returns true for the indoor furniture classes, the objects
// a room scan is usually after.
func IsFurniture(className string) bool {
	furniture := map[string]bool{
		"chair": true, "couch": true, "bed": true, "dining table": true,
		"potted plant": true, "toilet": true, "tv": true,
	}
	return furniture[className]
}

// IsPerson returns true if the class is a person.
func IsPerson(className string) bool {
	return className == "person"
}
