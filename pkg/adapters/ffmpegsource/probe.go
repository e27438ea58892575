package ffmpegsource

import (
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// videoInfo is the container metadata needed to size the decode pipe.
type videoInfo struct {
	width      int
	height     int
	frameCount int
	frameRate  float64
}

// probe reads the MP4 container and extracts the video track metadata.
func probe(path string) (videoInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return videoInfo{}, err
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return videoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	if mp4File.Moov == nil {
		return videoInfo{}, fmt.Errorf("no moov box (fragmented input is not supported)")
	}

	// Find the video track.
	var video *mp4.TrakBox
	for _, trak := range mp4File.Moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			video = trak
			break
		}
	}
	if video == nil {
		return videoInfo{}, fmt.Errorf("no video track found")
	}

	info := videoInfo{}

	// Picture size from the sample description; the tkhd size is a
	// 16.16 fixed-point fallback.
	if stbl := video.Mdia.Minf.Stbl; stbl != nil && stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				info.width = int(vse.Width)
				info.height = int(vse.Height)
				break
			}
		}
	}
	if info.width == 0 || info.height == 0 {
		info.width = int(video.Tkhd.Width >> 16)
		info.height = int(video.Tkhd.Height >> 16)
	}
	if info.width == 0 || info.height == 0 {
		return videoInfo{}, fmt.Errorf("video track has no picture size")
	}

	// Frame count from the sample table, frame rate from the media
	// duration.
	if stbl := video.Mdia.Minf.Stbl; stbl != nil && stbl.Stsz != nil {
		info.frameCount = int(stbl.Stsz.SampleNumber)
	}
	mdhd := video.Mdia.Mdhd
	if mdhd != nil && mdhd.Duration > 0 && mdhd.Timescale > 0 && info.frameCount > 0 {
		seconds := float64(mdhd.Duration) / float64(mdhd.Timescale)
		info.frameRate = float64(info.frameCount) / seconds
	}
	if info.frameRate <= 0 {
		return videoInfo{}, fmt.Errorf("video track has no usable timing")
	}

	return info, nil
}
