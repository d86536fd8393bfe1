// Package ocr finds printed words in camera frames using Tesseract.
//
// A Recognizer turns one frame into a list of TextRegion values: the
// recognized word, its confidence in [0,1] and the quadrilateral it occupies
// in frame pixel coordinates. Regions are produced fresh for every frame and
// carry no identity across frames.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Preprocessing
//
// Frames are converted to grayscale before recognition by default. Scale
// upsamples small text before it reaches Tesseract and Contrast stretches
// faint print. Bounding boxes are always reported in the coordinates of the
// original frame, whatever scale was used.
package ocr
