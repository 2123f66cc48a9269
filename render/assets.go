package render

// GeneratorName identifies the tool in the document metadata.
const GeneratorName = "WB Datadict"

// jQueryURL is the only external resource the document references.
const jQueryURL = "https://ajax.googleapis.com/ajax/libs/jquery/3.1.0/jquery.min.js"

// headScript highlights the table targeted by a clicked same-document link.
const headScript = `    <script>
      // Highlight table corresponding to the current fragment in the URL.
      $(document).ready(function(){
        $("a").click(function() {
          var elem = $(this);
          // Remove all classes from tables.
          $("table").removeClass( "focused" )
          // Get a.href value and extract its fragment id.
          var id = elem.attr("href");
          // Highlight table using fragment id.
          $(id).addClass( "focused" );
        });
      });
    </script>
`

const headStyle = `    <style type="text/css">
    a{
        text-decoration: none;
    }
    abbr{
        cursor: help;
    }
    header{
        color: #6A6A6A;
        text-align: right;
    }
    table{
        border-collapse: collapse;
        margin-bottom: 30px;
        width: 100%;
    }
    table caption{
        font-size: 120%;
        font-weight: bold;
    }
    table, td, th{
        border-color: silver;
        border-style: solid;
        border-width: 1px;
    }
    caption{
        color: black;
    }
    td, th{
        padding: 1em;
    }
    tr:hover{
        color: #333;
        background-color: #F2F2F2;
    }
    th{
        background-color: #F5F5F5;
    }
    td{
        color: #6A6A6A;
    }
    ul{
        font-style: italic;
    }
    .centered{
        text-align: center;
    }
    .field{
        color: #4C4C4C;
        font-weight: bold;
    }
    .focused{
        outline-color: aqua;
        outline-style: solid;
        outline-width: thin;
    }
    </style>
`

// columnHeaderRow is shared by every table section.
const columnHeaderRow = "<tr>\n" +
	"    <th>Column name</th>\n" +
	"    <th>DataType</th>\n" +
	"    <th><abbr title='Primary Key'>PK</abbr></th>\n" +
	"    <th><abbr title='Foreign Key'>FK</abbr></th>\n" +
	"    <th><abbr title='Not Null'>NN</abbr></th>\n" +
	"    <th><abbr title='Unique'>UQ</abbr></th>\n" +
	"    <th><abbr title='Binary'>BIN</abbr></th>\n" +
	"    <th><abbr title='Unsigned'>UN</abbr></th>\n" +
	"    <th><abbr title='Zero Fill'>ZF</abbr></th>\n" +
	"    <th><abbr title='Auto Increment'>AI</abbr></th>\n" +
	"    <th>Default</th>\n" +
	"    <th>Comment</th>\n" +
	"</tr>\n"

const (
	checkedCell   = "    <td class='centered'>&#10004;</td>\n"
	uncheckedCell = "    <td class='centered'>&nbsp;</td>\n"
)

const footer = "</body>\n</html>"
