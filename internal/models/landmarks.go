package models

import "math"

// Pose landmark indices following the MediaPipe Pose convention (33 points).
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// landmarkNames maps configuration joint names to landmark indices.
// Side-neutral names ("shoulder", "knee") resolve per side via SideIndex.
var landmarkNames = map[string]int{
	"nose":           Nose,
	"left_ear":       LeftEar,
	"right_ear":      RightEar,
	"left_shoulder":  LeftShoulder,
	"right_shoulder": RightShoulder,
	"left_elbow":     LeftElbow,
	"right_elbow":    RightElbow,
	"left_wrist":     LeftWrist,
	"right_wrist":    RightWrist,
	"left_hip":       LeftHip,
	"right_hip":      RightHip,
	"left_knee":      LeftKnee,
	"right_knee":     RightKnee,
	"left_ankle":     LeftAnkle,
	"right_ankle":    RightAnkle,
	"left_heel":      LeftHeel,
	"right_heel":     RightHeel,
}

// sideNeutral maps a base joint name to its left/right landmark indices.
var sideNeutral = map[string][2]int{
	"ear":      {LeftEar, RightEar},
	"shoulder": {LeftShoulder, RightShoulder},
	"elbow":    {LeftElbow, RightElbow},
	"wrist":    {LeftWrist, RightWrist},
	"hip":      {LeftHip, RightHip},
	"knee":     {LeftKnee, RightKnee},
	"ankle":    {LeftAnkle, RightAnkle},
	"heel":     {LeftHeel, RightHeel},
}

// LandmarkIndex resolves a fully-qualified joint name (e.g. "left_knee",
// "nose") to its landmark index.
func LandmarkIndex(name string) (int, bool) {
	i, ok := landmarkNames[name]
	return i, ok
}

// SideIndex resolves a side-neutral joint name (e.g. "knee") to the landmark
// index for the given side. side 0 is left, 1 is right.
func SideIndex(base string, side int) (int, bool) {
	pair, ok := sideNeutral[base]
	if !ok || side < 0 || side > 1 {
		return 0, false
	}
	return pair[side], true
}

// LandmarkPoint is one tracked body point as produced by the pose service.
// Coordinates are normalized to the frame; Visibility is a confidence in [0,1].
type LandmarkPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// PoseFrame is one frame of landmarks, indexed by the constants above.
type PoseFrame []LandmarkPoint

// Validate reports whether the frame is well-formed: exactly NumLandmarks
// points, all coordinates finite, visibility within [0,1]. Malformed frames
// are dropped by the caller without mutating any state.
func (f PoseFrame) Validate() bool {
	if len(f) != NumLandmarks {
		return false
	}
	for _, p := range f {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) || !finite(p.Visibility) {
			return false
		}
		if p.Visibility < 0 || p.Visibility > 1 {
			return false
		}
	}
	return true
}

// Point returns the landmark at index i and whether its visibility meets
// minVis. Out-of-range indices report false.
func (f PoseFrame) Point(i int, minVis float64) (LandmarkPoint, bool) {
	if i < 0 || i >= len(f) {
		return LandmarkPoint{}, false
	}
	p := f[i]
	return p, p.Visibility >= minVis
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
