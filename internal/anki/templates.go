package anki

// Card templates and styling for the exported note type.

const frontTemplate = `<div class="front">
<div class="translation">{{Translation}}</div>
</div>`

const backTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="lemma">{{Lemma}}</div>
{{#Phonetic}}
<div class="phonetic">{{Phonetic}}</div>
{{/Phonetic}}
{{#Examples}}
<div class="examples">{{Examples}}</div>
{{/Examples}}
{{#Notes}}
<div class="notes">{{Notes}}</div>
{{/Notes}}
</div>`

const reverseFrontTemplate = `<div class="front">
<div class="lemma">{{Lemma}}</div>
</div>`

const reverseBackTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="translation">{{Translation}}</div>
{{#Phonetic}}
<div class="phonetic">{{Phonetic}}</div>
{{/Phonetic}}
{{#Examples}}
<div class="examples">{{Examples}}</div>
{{/Examples}}
{{#Notes}}
<div class="notes">{{Notes}}</div>
{{/Notes}}
</div>`

const cardCSS = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.front, .back {
  padding: 20px;
}

.translation {
  font-size: 28px;
  font-weight: bold;
  color: #2c3e50;
  margin: 20px 0;
}

.lemma {
  font-size: 32px;
  font-weight: bold;
  color: #c0392b;
  margin: 20px 0;
}

.phonetic {
  font-size: 18px;
  color: #16a085;
  margin: 10px 0;
}

.examples {
  font-size: 16px;
  color: #555;
  margin: 15px 0;
}

.notes {
  font-size: 16px;
  color: #7f8c8d;
  margin-top: 20px;
  font-style: italic;
}

hr#answer {
  margin: 30px 0;
  border: 0;
  border-top: 1px solid #ecf0f1;
}`
